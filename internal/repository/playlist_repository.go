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

type PlaylistRepository struct {
	base
	collection *mongo.Collection
}

func NewPlaylistRepository(db *mongo.Database, timeout time.Duration) *PlaylistRepository {
	return &PlaylistRepository{
		base:       newBase(timeout),
		collection: db.Collection(playlistsCollection),
	}
}

func (r *PlaylistRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "owner", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("owner_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "videos", Value: 1}},
			Options: options.Index().SetName("videos_idx"),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	now := time.Now()
	playlist.ID = primitive.NewObjectID()
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, playlist)
	return translate(err)
}

func (r *PlaylistRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var playlist models.Playlist
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&playlist); err != nil {
		return nil, translate(err)
	}
	return &playlist, nil
}

type playlistDetailDoc struct {
	models.PlaylistDetail `bson:",inline"`
	VideoIDs              []primitive.ObjectID    `bson:"videos"`
	ResolvedVideos        []models.VideoWithOwner `bson:"resolved_videos"`
}

// Detail returns the playlist with its videos, in playlist order, and owner resolved
func (r *PlaylistRepository) Detail(ctx context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, playlistDetailPipeline(id))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []playlistDetailDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}

	detail := docs[0].PlaylistDetail
	detail.Videos = orderByIDs(docs[0].VideoIDs, docs[0].ResolvedVideos, func(v models.VideoWithOwner) primitive.ObjectID {
		return v.ID
	})
	return &detail, nil
}

// ListByOwner returns the owner's playlists, newest first
func (r *PlaylistRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Playlist, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	playlists := []models.Playlist{}
	if err := cursor.All(ctx, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// Update applies the non-nil fields and returns the updated playlist
func (r *PlaylistRepository) Update(ctx context.Context, id primitive.ObjectID, update models.PlaylistUpdate) (*models.Playlist, error) {
	set := bson.M{"updated_at": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

// AddVideo appends the video unless the playlist already holds it
func (r *PlaylistRepository) AddVideo(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{
		"$addToSet": bson.M{"videos": videoID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
}

func (r *PlaylistRepository) RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{
		"$pull": bson.M{"videos": videoID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

// RemoveVideoFromAll drops a deleted video from every playlist
func (r *PlaylistRepository) RemoveVideoFromAll(ctx context.Context, videoID primitive.ObjectID) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.collection.UpdateMany(ctx,
		bson.M{"videos": videoID},
		bson.M{"$pull": bson.M{"videos": videoID}},
	)
	return err
}

func (r *PlaylistRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
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

func (r *PlaylistRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Playlist, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var playlist models.Playlist
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&playlist); err != nil {
		return nil, translate(err)
	}
	return &playlist, nil
}
