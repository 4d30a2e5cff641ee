package service

import (
	"context"

	"github.com/yourusername/video-sharing-platform/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// ChannelVideoStats aggregates a channel's videos
type ChannelVideoStats interface {
	CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
	TotalViewsByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
	TotalLikesByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
}

// SubscriberCounter counts a channel's subscribers
type SubscriberCounter interface {
	CountSubscribers(ctx context.Context, channelID primitive.ObjectID) (int64, error)
}

type DashboardService struct {
	videos      ChannelVideoStats
	subscribers SubscriberCounter
}

func NewDashboardService(videos ChannelVideoStats, subscribers SubscriberCounter) *DashboardService {
	return &DashboardService{
		videos:      videos,
		subscribers: subscribers,
	}
}

// ChannelStats runs the four independent aggregates concurrently
func (s *DashboardService) ChannelStats(ctx context.Context, channelID primitive.ObjectID) (*models.ChannelStats, error) {
	var stats models.ChannelStats

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalVideos, err = s.videos.CountByOwner(ctx, channelID)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalViews, err = s.videos.TotalViewsByOwner(ctx, channelID)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalLikes, err = s.videos.TotalLikesByOwner(ctx, channelID)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalSubscribers, err = s.subscribers.CountSubscribers(ctx, channelID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
