package rest

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/kafka"
	"github.com/yourusername/video-sharing-platform/internal/logger"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/repository"
	"github.com/yourusername/video-sharing-platform/internal/response"
	"github.com/yourusername/video-sharing-platform/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoHandlers handles video listing, upload and owner mutations
type VideoHandlers struct {
	videos    VideoStore
	users     UserStore
	comments  CommentStore
	likes     LikeStore
	playlists PlaylistStore
	media     MediaUploader
	events    EventEmitter
	logger    *logrus.Logger
}

func NewVideoHandlers(
	videos VideoStore,
	users UserStore,
	comments CommentStore,
	likes LikeStore,
	playlists PlaylistStore,
	media MediaUploader,
	events EventEmitter,
	logger *logrus.Logger,
) *VideoHandlers {
	return &VideoHandlers{
		videos:    videos,
		users:     users,
		comments:  comments,
		likes:     likes,
		playlists: playlists,
		media:     media,
		events:    events,
		logger:    logger,
	}
}

type createVideoRequest struct {
	Title         string                `json:"title" form:"title"`
	Description   string                `json:"description" form:"description"`
	Duration      float64               `json:"duration" form:"duration"`
	VideoURL      string                `json:"videoFile" form:"-"`
	ThumbnailURL  string                `json:"thumbnail" form:"-"`
	VideoFile     *multipart.FileHeader `json:"-" form:"videoFile"`
	ThumbnailFile *multipart.FileHeader `json:"-" form:"thumbnail"`
}

type updateVideoRequest struct {
	Title         *string               `json:"title" form:"title"`
	Description   *string               `json:"description" form:"description"`
	ThumbnailURL  *string               `json:"thumbnail" form:"-"`
	ThumbnailFile *multipart.FileHeader `json:"-" form:"thumbnail"`
}

// List returns a page of videos
// GET /api/v1/videos
func (h *VideoHandlers) List(c *gin.Context) {
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

	filter := repository.VideoFilter{
		Query:         strings.TrimSpace(c.Query("query")),
		PublishedOnly: true,
	}
	if userID := strings.TrimSpace(c.Query("userId")); userID != "" {
		owner, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			fail(c, apperror.Validation("invalid userId"))
			return
		}
		filter.OwnerID = &owner
		filter.PublishedOnly = owner != optionalActorID(c)
	}

	result, err := h.videos.List(c.Request.Context(), filter, sort, page)
	if err != nil {
		fail(c, storeError(h.logger, err, "videos not found", "list videos"))
		return
	}

	response.OK(c, result, "videos fetched successfully")
}

// Create publishes a new video owned by the caller
// POST /api/v1/videos
func (h *VideoHandlers) Create(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req createVideoRequest
	if err := bindBody(c, &req); err != nil {
		fail(c, err)
		return
	}

	video := &models.Video{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Duration:    req.Duration,
		Owner:       actor.ID,
		IsPublished: true,
	}
	if video.Title == "" || video.Description == "" {
		fail(c, apperror.Validation("title and description are required"))
		return
	}
	if video.Duration < 0 {
		fail(c, apperror.Validation("duration cannot be negative"))
		return
	}

	ctx := c.Request.Context()
	if isMultipart(c) {
		if req.VideoFile == nil || req.ThumbnailFile == nil {
			fail(c, apperror.Validation("video file and thumbnail are required"))
			return
		}
		if video.VideoFile, err = h.media.Upload(ctx, actor.ID.Hex(), service.MediaVideo, req.VideoFile); err != nil {
			fail(c, err)
			return
		}
		if video.Thumbnail, err = h.media.Upload(ctx, actor.ID.Hex(), service.MediaThumbnail, req.ThumbnailFile); err != nil {
			h.media.DeleteByURL(ctx, video.VideoFile)
			fail(c, err)
			return
		}
	} else {
		video.VideoFile = strings.TrimSpace(req.VideoURL)
		video.Thumbnail = strings.TrimSpace(req.ThumbnailURL)
		if video.VideoFile == "" || video.Thumbnail == "" {
			fail(c, apperror.Validation("video file and thumbnail are required"))
			return
		}
	}

	if err := h.videos.Create(ctx, video); err != nil {
		if isMultipart(c) {
			h.deleteMedia(ctx, video)
		}
		fail(c, storeError(h.logger, err, "video not found", "create video"))
		return
	}

	h.events.Emit(ctx, kafka.NewActivityEvent(kafka.EventVideoUploaded, actor.ID.Hex(), "video", video.ID.Hex(), true))
	logger.WithVideoID(h.logger, video.ID.Hex()).Info("Video published")
	response.Created(c, video, "video uploaded successfully")
}

// Get returns a video, counting the view and recording it in the caller's history
// GET /api/v1/videos/:videoId
func (h *VideoHandlers) Get(c *gin.Context) {
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	video, err := h.videos.FindByID(ctx, videoID)
	if err != nil {
		fail(c, storeError(h.logger, err, "video not found", "find video"))
		return
	}
	viewer := optionalActorID(c)
	if !video.IsPublished && video.Owner != viewer {
		fail(c, apperror.NotFound("video not found"))
		return
	}

	video, err = h.videos.IncrementViews(ctx, videoID)
	if err != nil {
		fail(c, storeError(h.logger, err, "video not found", "count video view"))
		return
	}

	if !viewer.IsZero() {
		if err := h.users.AddToWatchHistory(ctx, viewer, videoID); err != nil {
			logger.WithUserID(h.logger, viewer.Hex()).WithError(err).Warn("Failed to record watch history")
		}
	}

	response.OK(c, video, "video fetched successfully")
}

// Update changes title, description or thumbnail of the caller's video
// PATCH /api/v1/videos/:videoId
func (h *VideoHandlers) Update(c *gin.Context) {
	actor, video, ok := h.ownedVideo(c)
	if !ok {
		return
	}

	var req updateVideoRequest
	if err := bindBody(c, &req); err != nil {
		fail(c, err)
		return
	}

	update := models.VideoUpdate{
		Title:       trimmed(req.Title),
		Description: trimmed(req.Description),
		Thumbnail:   trimmed(req.ThumbnailURL),
	}
	if (update.Title != nil && *update.Title == "") || (update.Description != nil && *update.Description == "") {
		fail(c, apperror.Validation("title and description cannot be empty"))
		return
	}

	ctx := c.Request.Context()
	if req.ThumbnailFile != nil {
		url, err := h.media.Upload(ctx, actor.ID.Hex(), service.MediaThumbnail, req.ThumbnailFile)
		if err != nil {
			fail(c, err)
			return
		}
		update.Thumbnail = &url
	}
	if update.Thumbnail != nil && *update.Thumbnail == "" {
		fail(c, apperror.Validation("thumbnail cannot be empty"))
		return
	}
	if update.IsEmpty() {
		fail(c, apperror.Validation("at least one of title, description or thumbnail is required"))
		return
	}

	updated, err := h.videos.Update(ctx, video.ID, update)
	if err != nil {
		if req.ThumbnailFile != nil {
			h.media.DeleteByURL(ctx, *update.Thumbnail)
		}
		fail(c, storeError(h.logger, err, "video not found", "update video"))
		return
	}
	if update.Thumbnail != nil && *update.Thumbnail != video.Thumbnail {
		h.media.DeleteByURL(ctx, video.Thumbnail)
	}

	response.OK(c, updated, "video updated successfully")
}

// Delete removes the caller's video with its comments, likes and media
// DELETE /api/v1/videos/:videoId
func (h *VideoHandlers) Delete(c *gin.Context) {
	actor, video, ok := h.ownedVideo(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.videos.Delete(ctx, video.ID); err != nil {
		fail(c, storeError(h.logger, err, "video not found", "delete video"))
		return
	}

	h.cascadeDelete(ctx, video)
	h.events.Emit(ctx, kafka.NewActivityEvent(kafka.EventVideoDeleted, actor.ID.Hex(), "video", video.ID.Hex(), false))
	response.OK(c, gin.H{}, "video deleted successfully")
}

// TogglePublish flips whether the caller's video is listed
// PATCH /api/v1/videos/toggle/publish/:videoId
func (h *VideoHandlers) TogglePublish(c *gin.Context) {
	actor, video, ok := h.ownedVideo(c)
	if !ok {
		return
	}

	updated, err := h.videos.TogglePublish(c.Request.Context(), video.ID)
	if err != nil {
		fail(c, storeError(h.logger, err, "video not found", "toggle publish status"))
		return
	}

	h.events.Emit(c.Request.Context(), kafka.NewActivityEvent(kafka.EventVideoPublishToggled, actor.ID.Hex(), "video", video.ID.Hex(), updated.IsPublished))
	response.OK(c, updated, "publish status toggled successfully")
}

// ownedVideo loads the video named by the path and checks the caller owns it.
// It reports the failure itself and returns false when the request must stop.
func (h *VideoHandlers) ownedVideo(c *gin.Context) (*models.Actor, *models.Video, bool) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return nil, nil, false
	}
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		fail(c, err)
		return nil, nil, false
	}

	video, err := h.videos.FindByID(c.Request.Context(), videoID)
	if err != nil {
		fail(c, storeError(h.logger, err, "video not found", "find video"))
		return nil, nil, false
	}
	if err := requireOwner(actor, video.Owner, "video"); err != nil {
		fail(c, err)
		return nil, nil, false
	}
	return actor, video, true
}

// cascadeDelete removes data that references a deleted video. Failures are
// logged and do not undo the delete.
func (h *VideoHandlers) cascadeDelete(ctx context.Context, video *models.Video) {
	log := logger.WithVideoID(h.logger, video.ID.Hex())

	commentIDs, err := h.comments.DeleteByVideo(ctx, video.ID)
	if err != nil {
		log.WithError(err).Warn("Failed to delete comments of video")
	}
	if len(commentIDs) > 0 {
		if err := h.likes.DeleteByTargets(ctx, models.LikeTargetComment, commentIDs...); err != nil {
			log.WithError(err).Warn("Failed to delete comment likes of video")
		}
	}
	if err := h.likes.DeleteByTargets(ctx, models.LikeTargetVideo, video.ID); err != nil {
		log.WithError(err).Warn("Failed to delete likes of video")
	}
	if err := h.playlists.RemoveVideoFromAll(ctx, video.ID); err != nil {
		log.WithError(err).Warn("Failed to remove video from playlists")
	}
	if err := h.users.RemoveFromWatchHistory(ctx, video.ID); err != nil {
		log.WithError(err).Warn("Failed to remove video from watch histories")
	}
	h.deleteMedia(ctx, video)
}

func (h *VideoHandlers) deleteMedia(ctx context.Context, video *models.Video) {
	h.media.DeleteByURL(ctx, video.VideoFile)
	h.media.DeleteByURL(ctx, video.Thumbnail)
}
