package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("document already exists")
)

// DefaultQueryTimeout bounds a repository call when no timeout is configured
const DefaultQueryTimeout = 5 * time.Second

// Collection names
const (
	usersCollection         = "users"
	videosCollection        = "videos"
	tweetsCollection        = "tweets"
	commentsCollection      = "comments"
	likesCollection         = "likes"
	subscriptionsCollection = "subscriptions"
	playlistsCollection     = "playlists"
)

type base struct {
	timeout time.Duration
}

func newBase(timeout time.Duration) base {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return base{timeout: timeout}
}

func (b base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

// translate maps driver errors onto the repository sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

// countResult decodes the output of a {$count: "total"} stage
type countResult struct {
	Total int64 `bson:"total"`
}

// facetResult decodes a {$facet: {items, total}} stage
type facetResult[T any] struct {
	Items []T           `bson:"items"`
	Total []countResult `bson:"total"`
}

func (f facetResult[T]) total() int64 {
	if len(f.Total) == 0 {
		return 0
	}
	return f.Total[0].Total
}

// aggregateFacet runs a pipeline ending in a facet stage and decodes its single result
func aggregateFacet[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, int64, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var results []facetResult[T]
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, err
	}
	if len(results) == 0 {
		return []T{}, 0, nil
	}
	items := results[0].Items
	if items == nil {
		items = []T{}
	}
	return items, results[0].total(), nil
}

// sumResult decodes a {$group: {_id: null, total: {$sum: ...}}} stage
type sumResult struct {
	Total int64 `bson:"total"`
}

func aggregateSum(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) (int64, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []sumResult
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func stage(name string, value interface{}) bson.D {
	return bson.D{{Key: name, Value: value}}
}
