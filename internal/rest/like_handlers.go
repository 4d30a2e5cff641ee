package rest

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/kafka"
	"github.com/yourusername/video-sharing-platform/internal/metrics"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LikeHandlers struct {
	likes    LikeStore
	videos   VideoStore
	comments CommentStore
	tweets   TweetStore
	events   EventEmitter
	logger   *logrus.Logger
}

func NewLikeHandlers(likes LikeStore, videos VideoStore, comments CommentStore, tweets TweetStore, events EventEmitter, logger *logrus.Logger) *LikeHandlers {
	return &LikeHandlers{
		likes:    likes,
		videos:   videos,
		comments: comments,
		tweets:   tweets,
		events:   events,
		logger:   logger,
	}
}

// ToggleVideoLike likes or unlikes a video. Unpublished videos only exist for their owner.
// POST /api/v1/likes/toggle/v/:videoId
func (h *LikeHandlers) ToggleVideoLike(c *gin.Context) {
	h.toggle(c, models.LikeTargetVideo, "videoId", func(ctx context.Context, id primitive.ObjectID) error {
		video, err := h.videos.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !video.IsPublished && video.Owner != optionalActorID(c) {
			return apperror.NotFound("video not found")
		}
		return nil
	})
}

// ToggleCommentLike likes or unlikes a comment
// POST /api/v1/likes/toggle/c/:commentId
func (h *LikeHandlers) ToggleCommentLike(c *gin.Context) {
	h.toggle(c, models.LikeTargetComment, "commentId", func(ctx context.Context, id primitive.ObjectID) error {
		_, err := h.comments.FindByID(ctx, id)
		return err
	})
}

// ToggleTweetLike likes or unlikes a tweet
// POST /api/v1/likes/toggle/t/:tweetId
func (h *LikeHandlers) ToggleTweetLike(c *gin.Context) {
	h.toggle(c, models.LikeTargetTweet, "tweetId", func(ctx context.Context, id primitive.ObjectID) error {
		_, err := h.tweets.FindByID(ctx, id)
		return err
	})
}

func (h *LikeHandlers) toggle(c *gin.Context, target models.LikeTarget, param string, exists func(context.Context, primitive.ObjectID) error) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}
	targetID, err := objectIDParam(c, param)
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := exists(ctx, targetID); err != nil {
		fail(c, storeError(h.logger, err, string(target)+" not found", "find "+string(target)))
		return
	}

	liked, err := h.likes.Toggle(ctx, target, targetID, actor.ID)
	if err != nil {
		fail(c, storeError(h.logger, err, string(target)+" not found", "toggle like"))
		return
	}

	metrics.RecordToggle("like_"+string(target), liked)
	h.events.Emit(ctx, kafka.NewActivityEvent(kafka.EventLikeToggled, actor.ID.Hex(), string(target), targetID.Hex(), liked))

	message := string(target) + " unliked"
	if liked {
		message = string(target) + " liked"
	}
	response.OK(c, models.LikeToggle{Liked: liked}, message)
}

// LikedVideos returns a page of the videos the caller likes
// GET /api/v1/likes/videos
func (h *LikeHandlers) LikedVideos(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}
	page, err := paginationQuery(c)
	if err != nil {
		fail(c, err)
		return
	}
	sort, err := sortQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	result, err := h.likes.LikedVideos(c.Request.Context(), actor.ID, strings.TrimSpace(c.Query("query")), sort, page)
	if err != nil {
		fail(c, storeError(h.logger, err, "liked videos not found", "list liked videos"))
		return
	}

	response.OK(c, result, "liked videos fetched successfully")
}
