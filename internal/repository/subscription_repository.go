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

type SubscriptionRepository struct {
	base
	collection *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database, timeout time.Duration) *SubscriptionRepository {
	return &SubscriptionRepository{
		base:       newBase(timeout),
		collection: db.Collection(subscriptionsCollection),
	}
}

func (r *SubscriptionRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "subscriber", Value: 1},
				{Key: "channel", Value: 1},
			},
			Options: options.Index().SetName("subscriber_channel_idx").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "channel", Value: 1}},
			Options: options.Index().SetName("channel_idx"),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Toggle unsubscribes if the subscription exists and subscribes otherwise.
// It reports whether the subscriber is subscribed afterwards.
func (r *SubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID primitive.ObjectID) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pair := bson.M{"subscriber": subscriberID, "channel": channelID}

	result, err := r.collection.DeleteOne(ctx, pair)
	if err != nil {
		return false, err
	}
	if result.DeletedCount > 0 {
		return false, nil
	}

	now := time.Now()
	sub := &models.Subscription{
		ID:         primitive.NewObjectID(),
		Subscriber: subscriberID,
		Channel:    channelID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := r.collection.InsertOne(ctx, sub); err != nil {
		// a concurrent toggle inserted the same pair first
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// Subscribers lists the public profiles of the channel's subscribers
func (r *SubscriptionRepository) Subscribers(ctx context.Context, channelID primitive.ObjectID) ([]models.PublicProfile, error) {
	return r.profiles(ctx, subscriptionProfilesPipeline("channel", channelID, "subscriber"))
}

// SubscribedChannels lists the public profiles of the channels a user subscribes to
func (r *SubscriptionRepository) SubscribedChannels(ctx context.Context, subscriberID primitive.ObjectID) ([]models.PublicProfile, error) {
	return r.profiles(ctx, subscriptionProfilesPipeline("subscriber", subscriberID, "channel"))
}

func (r *SubscriptionRepository) CountSubscribers(ctx context.Context, channelID primitive.ObjectID) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"channel": channelID})
}

func (r *SubscriptionRepository) profiles(ctx context.Context, pipeline mongo.Pipeline) ([]models.PublicProfile, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []models.PublicProfile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
