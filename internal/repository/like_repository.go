package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrInvalidLikeTarget = errors.New("invalid like target")

type LikeRepository struct {
	base
	collection *mongo.Collection
}

func NewLikeRepository(db *mongo.Database, timeout time.Duration) *LikeRepository {
	return &LikeRepository{
		base:       newBase(timeout),
		collection: db.Collection(likesCollection),
	}
}

// EnsureIndexes creates one partial unique index per target kind so a user
// likes a given target at most once
func (r *LikeRepository) EnsureIndexes(ctx context.Context) error {
	targets := []models.LikeTarget{models.LikeTargetVideo, models.LikeTargetComment, models.LikeTargetTweet}

	indexes := make([]mongo.IndexModel, 0, len(targets)+1)
	for _, target := range targets {
		indexes = append(indexes, mongo.IndexModel{
			Keys: bson.D{
				{Key: "liked_by", Value: 1},
				{Key: target.Field(), Value: 1},
			},
			Options: options.Index().
				SetName("liked_by_" + target.Field() + "_idx").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{target.Field(): bson.M{"$exists": true}}),
		})
	}
	indexes = append(indexes, mongo.IndexModel{
		Keys:    bson.D{{Key: "video", Value: 1}},
		Options: options.Index().SetName("video_idx").SetSparse(true),
	})

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Toggle removes the user's like of the target if present and adds it
// otherwise. It reports whether the target is liked afterwards.
func (r *LikeRepository) Toggle(ctx context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) (bool, error) {
	if !target.Valid() {
		return false, ErrInvalidLikeTarget
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pair := bson.M{target.Field(): targetID, "liked_by": userID}

	result, err := r.collection.DeleteOne(ctx, pair)
	if err != nil {
		return false, err
	}
	if result.DeletedCount > 0 {
		return false, nil
	}

	now := time.Now()
	like := models.NewLike(target, targetID, userID)
	like.ID = primitive.NewObjectID()
	like.CreatedAt = now
	like.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, like); err != nil {
		// a concurrent toggle inserted the same pair first
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteByTargets removes every like of the given targets
func (r *LikeRepository) DeleteByTargets(ctx context.Context, target models.LikeTarget, ids ...primitive.ObjectID) error {
	if !target.Valid() {
		return ErrInvalidLikeTarget
	}
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{target.Field(): bson.M{"$in": ids}})
	return err
}

// LikedVideos returns one page of the videos the user likes. The total honours the title filter.
func (r *LikeRepository) LikedVideos(ctx context.Context, userID primitive.ObjectID, query string, sort validation.Sort, page validation.Pagination) (models.Page[models.VideoWithOwner], error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := likedVideosPipeline(userID, query, sort, page)
	items, total, err := aggregateFacet[models.VideoWithOwner](ctx, r.collection, pipeline)
	if err != nil {
		return models.Page[models.VideoWithOwner]{}, err
	}
	return models.NewPage(items, total, page.Page, page.Limit), nil
}
