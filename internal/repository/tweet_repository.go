package repository

import (
	"context"
	"time"

	"github.com/yourusername/video-sharing-platform/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TweetRepository struct {
	base
	collection *mongo.Collection
}

func NewTweetRepository(db *mongo.Database, timeout time.Duration) *TweetRepository {
	return &TweetRepository{
		base:       newBase(timeout),
		collection: db.Collection(tweetsCollection),
	}
}

func (r *TweetRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("owner_created_idx"),
	})
	return err
}

func (r *TweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	now := time.Now()
	tweet.ID = primitive.NewObjectID()
	tweet.CreatedAt = now
	tweet.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, tweet)
	return translate(err)
}

func (r *TweetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var tweet models.Tweet
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tweet); err != nil {
		return nil, translate(err)
	}
	return &tweet, nil
}

// ListByOwner returns the owner's tweets, newest first
func (r *TweetRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Tweet, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tweets := []models.Tweet{}
	if err := cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

func (r *TweetRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}}

	var tweet models.Tweet
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&tweet); err != nil {
		return nil, translate(err)
	}
	return &tweet, nil
}

func (r *TweetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
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
