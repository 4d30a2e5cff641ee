package validation

import (
	"errors"
	"math"
	"net/mail"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidFileName     = errors.New("invalid filename")
	ErrFileNameTooLong     = errors.New("filename too long")
	ErrInvalidCharacters   = errors.New("filename contains invalid characters")
	ErrHiddenFile          = errors.New("hidden files not allowed")
	ErrPathTraversal       = errors.New("path traversal attempt detected")
	ErrInvalidObjectID     = errors.New("invalid object ID format")
	ErrInvalidFileSize     = errors.New("invalid file size")
	ErrUnsupportedMimeType = errors.New("unsupported MIME type")
	ErrInvalidPagination   = errors.New("page and limit must be positive integers")
	ErrInvalidSort         = errors.New("unsupported sort field")
	ErrInvalidSortType     = errors.New("sortType must be asc or desc")
	ErrEmptyField          = errors.New("required field is empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
)

const (
	MaxFileNameLength = 255
	MinPasswordLength = 8
	DefaultPage       = 1
	DefaultLimit      = 10
	MaxLimit          = 100
)

// ImageMimeTypes are accepted for avatars, cover images and thumbnails
var ImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// VideoMimeTypes are accepted for uploaded video files
var VideoMimeTypes = map[string]bool{
	"video/mp4":        true,
	"video/mpeg":       true,
	"video/quicktime":  true,
	"video/webm":       true,
	"video/x-matroska": true,
}

// sortFields maps the public sort keys to document fields
var sortFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"views":     "views",
	"duration":  "duration",
}

// Field is a named input value checked by RequireFields
type Field struct {
	Name  string
	Value string
}

// RequireFields returns the names of fields that are empty after trimming, in input order
func RequireFields(fields ...Field) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Name+" is required")
		}
	}
	return missing
}

// SanitizeFileName removes dangerous characters and prevents path traversal
func SanitizeFileName(name string) (string, error) {
	if name == "" {
		return "", ErrInvalidFileName
	}

	name = filepath.Base(name)

	if strings.ContainsAny(name, "\\/:*?\"<>|") {
		return "", ErrInvalidCharacters
	}

	if strings.HasPrefix(name, ".") {
		return "", ErrHiddenFile
	}

	if strings.Contains(name, "..") {
		return "", ErrPathTraversal
	}

	if len(name) > MaxFileNameLength {
		return "", ErrFileNameTooLong
	}

	if len(strings.TrimSpace(name)) == 0 {
		return "", ErrInvalidFileName
	}

	return name, nil
}

// ParseObjectID checks that id is a valid MongoDB ObjectID and returns it
func ParseObjectID(id string) (primitive.ObjectID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return primitive.NilObjectID, ErrEmptyField
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidObjectID
	}

	return oid, nil
}

// ValidateFileSize checks if file size is within acceptable range
func ValidateFileSize(size, minSize, maxSize int64) error {
	if size < minSize || size > maxSize {
		return ErrInvalidFileSize
	}
	return nil
}

// ValidateMimeType checks if MIME type is in the allowed list
func ValidateMimeType(mimeType string, allowedTypes map[string]bool) error {
	if mimeType == "" {
		return ErrUnsupportedMimeType
	}

	if !allowedTypes[strings.ToLower(mimeType)] {
		return ErrUnsupportedMimeType
	}

	return nil
}

// Pagination is a validated page request
type Pagination struct {
	Page  int64
	Limit int64
}

// Skip returns the number of documents before the requested page
func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

// ParsePagination reads page and limit query values. Empty values take the
// defaults, limit is capped at MaxLimit, and pages whose offset would
// overflow are rejected.
func ParsePagination(pageValue, limitValue string) (Pagination, error) {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}

	if pageValue = strings.TrimSpace(pageValue); pageValue != "" {
		page, err := strconv.ParseInt(pageValue, 10, 64)
		if err != nil || page < 1 {
			return Pagination{}, ErrInvalidPagination
		}
		p.Page = page
	}

	if limitValue = strings.TrimSpace(limitValue); limitValue != "" {
		limit, err := strconv.ParseInt(limitValue, 10, 64)
		if err != nil || limit < 1 {
			return Pagination{}, ErrInvalidPagination
		}
		p.Limit = limit
	}

	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	// Skip must stay representable
	if p.Page > math.MaxInt64/p.Limit {
		return Pagination{}, ErrInvalidPagination
	}

	return p, nil
}

// Sort is a validated sort request
type Sort struct {
	Field     string
	Direction int
}

// ParseSort maps the public sortBy key through the whitelist. Empty values
// sort by creation time, newest first.
func ParseSort(sortBy, sortType string) (Sort, error) {
	s := Sort{Field: "created_at", Direction: -1}

	if sortBy = strings.TrimSpace(sortBy); sortBy != "" {
		field, ok := sortFields[sortBy]
		if !ok {
			return Sort{}, ErrInvalidSort
		}
		s.Field = field
	}

	switch strings.ToLower(strings.TrimSpace(sortType)) {
	case "", "desc":
	case "asc":
		s.Direction = 1
	default:
		return Sort{}, ErrInvalidSortType
	}

	return s, nil
}

// EscapeRegex quotes user input for use inside a $regex filter
func EscapeRegex(query string) string {
	return regexp.QuoteMeta(strings.TrimSpace(query))
}

// ValidateEmail checks that email is a single bare address
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyField
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".") {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePassword enforces the minimum password length
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// GenerateMediaObjectName creates a storage key under the owner's prefix
func GenerateMediaObjectName(ownerID, kind, objectID, fileName string) (string, error) {
	if _, err := ParseObjectID(ownerID); err != nil {
		return "", err
	}

	safeName, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(filepath.Join("users", ownerID, kind, objectID+strings.ToLower(filepath.Ext(safeName)))), nil
}
