package repository

import (
	"context"
	"strings"
	"time"

	"github.com/yourusername/video-sharing-platform/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	base
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database, timeout time.Duration) *UserRepository {
	return &UserRepository{
		base:       newBase(timeout),
		collection: db.Collection(usersCollection),
	}
}

// EnsureIndexes creates the unique username and email indexes
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("username_idx").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_idx").SetUnique(true),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new user, keeping a preassigned ID. Username and email are stored lowercased.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	now := time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Username = strings.ToLower(user.Username)
	user.Email = strings.ToLower(user.Email)
	if user.WatchHistory == nil {
		user.WatchHistory = []primitive.ObjectID{}
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, user)
	return translate(err)
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByUsernameOrEmail returns the user matching either value. Empty values are ignored.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	var or bson.A
	if username = strings.ToLower(strings.TrimSpace(username)); username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, ErrNotFound
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"$or": or}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// SetRefreshToken persists the refresh token as the user's only valid one
func (r *UserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"refresh_token": token, "updated_at": time.Now()}})
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{
		"$unset": bson.M{"refresh_token": ""},
		"$set":   bson.M{"updated_at": time.Now()},
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"password": passwordHash, "updated_at": time.Now()}})
}

// UpdateAccount applies the non-nil fields and returns the updated user
func (r *UserRepository) UpdateAccount(ctx context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if update.FullName != nil {
		set["fullname"] = strings.TrimSpace(*update.FullName)
	}
	if update.Email != nil {
		set["email"] = strings.ToLower(strings.TrimSpace(*update.Email))
	}
	if update.Username != nil {
		set["username"] = strings.ToLower(strings.TrimSpace(*update.Username))
	}
	return r.findOneAndSet(ctx, id, set)
}

func (r *UserRepository) SetAvatar(ctx context.Context, id primitive.ObjectID, url string) (*models.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"avatar": url, "updated_at": time.Now()})
}

func (r *UserRepository) SetCoverImage(ctx context.Context, id primitive.ObjectID, url string) (*models.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"cover_image": url, "updated_at": time.Now()})
}

// AddToWatchHistory moves videoID to the front of the user's watch history in one update
func (r *UserRepository) AddToWatchHistory(ctx context.Context, id, videoID primitive.ObjectID) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	update := mongo.Pipeline{
		stage("$set", bson.M{
			"watch_history": bson.M{"$concatArrays": bson.A{
				bson.A{videoID},
				bson.M{"$filter": bson.M{
					"input": bson.M{"$ifNull": bson.A{"$watch_history", bson.A{}}},
					"cond":  bson.M{"$ne": bson.A{"$$this", videoID}},
				}},
			}},
		}),
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveFromWatchHistory drops a deleted video from every user's history
func (r *UserRepository) RemoveFromWatchHistory(ctx context.Context, videoID primitive.ObjectID) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.collection.UpdateMany(ctx,
		bson.M{"watch_history": videoID},
		bson.M{"$pull": bson.M{"watch_history": videoID}},
	)
	return err
}

// ChannelProfile returns the channel of username with subscription counts as seen by viewer
func (r *UserRepository) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*models.ChannelProfile, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := channelProfilePipeline(strings.ToLower(strings.TrimSpace(username)), viewer)
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.ChannelProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}
	return &profiles[0], nil
}

type watchHistoryDoc struct {
	WatchHistory  []primitive.ObjectID    `bson:"watch_history"`
	HistoryVideos []models.VideoWithOwner `bson:"history_videos"`
}

// WatchHistory returns the user's watched videos, most recent first
func (r *UserRepository) WatchHistory(ctx context.Context, id primitive.ObjectID) ([]models.VideoWithOwner, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, watchHistoryPipeline(id))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []watchHistoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}

	// $lookup does not keep the order of the local array
	return orderByIDs(docs[0].WatchHistory, docs[0].HistoryVideos, func(v models.VideoWithOwner) primitive.ObjectID {
		return v.ID
	}), nil
}

func (r *UserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) findOneAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
