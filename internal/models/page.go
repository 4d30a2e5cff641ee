package models

// Page is one page of a listing
type Page[T any] struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int64 `json:"totalPages"`
	Items      []T   `json:"items"`
}

// NewPage builds a page, computing totalPages as ceil(total/limit). Items is never nil.
func NewPage[T any](items []T, total, page, limit int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	var pages int64
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page[T]{
		Page:       page,
		Limit:      limit,
		TotalCount: total,
		TotalPages: pages,
		Items:      items,
	}
}
