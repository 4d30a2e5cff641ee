package repository

import (
	"context"
	"time"

	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type VideoRepository struct {
	base
	collection *mongo.Collection
}

func NewVideoRepository(db *mongo.Database, timeout time.Duration) *VideoRepository {
	return &VideoRepository{
		base:       newBase(timeout),
		collection: db.Collection(videosCollection),
	}
}

// EnsureIndexes creates necessary database indexes for listings
func (r *VideoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "owner", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("owner_created_idx"),
		},
		{
			Keys: bson.D{
				{Key: "is_published", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("published_created_idx"),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	now := time.Now()
	video.ID = primitive.NewObjectID()
	video.CreatedAt = now
	video.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, video)
	return translate(err)
}

func (r *VideoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var video models.Video
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&video); err != nil {
		return nil, translate(err)
	}
	return &video, nil
}

// IncrementViews atomically adds one view and returns the updated video
func (r *VideoRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&video)
	if err != nil {
		return nil, translate(err)
	}
	return &video, nil
}

// Update applies the non-nil fields and returns the updated video
func (r *VideoRepository) Update(ctx context.Context, id primitive.ObjectID, update models.VideoUpdate) (*models.Video, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Thumbnail != nil {
		set["thumbnail"] = *update.Thumbnail
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&video); err != nil {
		return nil, translate(err)
	}
	return &video, nil
}

// TogglePublish flips is_published in a single pipeline update
func (r *VideoRepository) TogglePublish(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	update := mongo.Pipeline{
		stage("$set", bson.M{
			"is_published": bson.M{"$not": bson.A{"$is_published"}},
			"updated_at":   "$$NOW",
		}),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&video); err != nil {
		return nil, translate(err)
	}
	return &video, nil
}

func (r *VideoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of videos matching filter with owners resolved
func (r *VideoRepository) List(ctx context.Context, filter VideoFilter, sort validation.Sort, page validation.Pagination) (models.Page[models.VideoWithOwner], error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	items, total, err := aggregateFacet[models.VideoWithOwner](ctx, r.collection, videoListPipeline(filter, sort, page))
	if err != nil {
		return models.Page[models.VideoWithOwner]{}, err
	}
	return models.NewPage(items, total, page.Page, page.Limit), nil
}

func (r *VideoRepository) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"owner": ownerID})
}

func (r *VideoRepository) TotalViewsByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return aggregateSum(ctx, r.collection, totalViewsPipeline(ownerID))
}

// TotalLikesByOwner counts likes across every video of the owner
func (r *VideoRepository) TotalLikesByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return aggregateSum(ctx, r.collection, totalLikesPipeline(ownerID))
}
