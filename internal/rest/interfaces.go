package rest

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/yourusername/video-sharing-platform/internal/kafka"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/repository"
	"github.com/yourusername/video-sharing-platform/internal/service"
	"github.com/yourusername/video-sharing-platform/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore persists users and runs the user-centred aggregations
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	UpdateAccount(ctx context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error)
	SetAvatar(ctx context.Context, id primitive.ObjectID, url string) (*models.User, error)
	SetCoverImage(ctx context.Context, id primitive.ObjectID, url string) (*models.User, error)
	AddToWatchHistory(ctx context.Context, id, videoID primitive.ObjectID) error
	RemoveFromWatchHistory(ctx context.Context, videoID primitive.ObjectID) error
	ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, id primitive.ObjectID) ([]models.VideoWithOwner, error)
}

// AuthManager issues and revokes token pairs
type AuthManager interface {
	IssueTokens(ctx context.Context, userID primitive.ObjectID) (*models.AuthTokens, *models.User, error)
	Refresh(ctx context.Context, token string) (*models.AuthTokens, error)
	Logout(ctx context.Context, userID primitive.ObjectID, tokenID string, expiresAt time.Time) error
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPassword(password, hash string) bool
}

// MediaUploader stores uploaded files and returns their public URLs
type MediaUploader interface {
	Upload(ctx context.Context, ownerID string, kind service.MediaKind, file *multipart.FileHeader) (string, error)
	UploadOptional(ctx context.Context, ownerID string, kind service.MediaKind, file *multipart.FileHeader) (string, error)
	DeleteByURL(ctx context.Context, url string)
}

// EventEmitter publishes activity events without failing the request
type EventEmitter interface {
	Emit(ctx context.Context, event kafka.ActivityEvent)
}

type VideoStore interface {
	Create(ctx context.Context, video *models.Video) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	Update(ctx context.Context, id primitive.ObjectID, update models.VideoUpdate) (*models.Video, error)
	TogglePublish(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter repository.VideoFilter, sort validation.Sort, page validation.Pagination) (models.Page[models.VideoWithOwner], error)
}

type TweetStore interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Tweet, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByVideo(ctx context.Context, videoID primitive.ObjectID, page validation.Pagination) (models.Page[models.CommentWithOwner], error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type LikeStore interface {
	Toggle(ctx context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) (bool, error)
	DeleteByTargets(ctx context.Context, target models.LikeTarget, ids ...primitive.ObjectID) error
	LikedVideos(ctx context.Context, userID primitive.ObjectID, query string, sort validation.Sort, page validation.Pagination) (models.Page[models.VideoWithOwner], error)
}

type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID primitive.ObjectID) (bool, error)
	Subscribers(ctx context.Context, channelID primitive.ObjectID) ([]models.PublicProfile, error)
	SubscribedChannels(ctx context.Context, subscriberID primitive.ObjectID) ([]models.PublicProfile, error)
}

type PlaylistStore interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error)
	Detail(ctx context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Playlist, error)
	Update(ctx context.Context, id primitive.ObjectID, update models.PlaylistUpdate) (*models.Playlist, error)
	AddVideo(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error)
	RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error)
	RemoveVideoFromAll(ctx context.Context, videoID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// StatsProvider computes dashboard statistics
type StatsProvider interface {
	ChannelStats(ctx context.Context, channelID primitive.ObjectID) (*models.ChannelStats, error)
}

// HealthChecker is a dependency reported by /health
type HealthChecker interface {
	Ping(ctx context.Context) error
}
