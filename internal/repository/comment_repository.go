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

type CommentRepository struct {
	base
	collection *mongo.Collection
}

func NewCommentRepository(db *mongo.Database, timeout time.Duration) *CommentRepository {
	return &CommentRepository{
		base:       newBase(timeout),
		collection: db.Collection(commentsCollection),
	}
}

func (r *CommentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "video", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("video_created_idx"),
	})
	return err
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	now := time.Now()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, comment)
	return translate(err)
}

func (r *CommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// ListByVideo returns one page of the video's comments, newest first
func (r *CommentRepository) ListByVideo(ctx context.Context, videoID primitive.ObjectID, page validation.Pagination) (models.Page[models.CommentWithOwner], error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	items, total, err := aggregateFacet[models.CommentWithOwner](ctx, r.collection, commentsPipeline(videoID, page))
	if err != nil {
		return models.Page[models.CommentWithOwner]{}, err
	}
	return models.NewPage(items, total, page.Page, page.Limit), nil
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}}

	var comment models.Comment
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&comment); err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
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

// DeleteByVideo removes every comment on the video and returns the removed ids
func (r *CommentRepository) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"video": videoID}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, err
	}
	return ids, nil
}
