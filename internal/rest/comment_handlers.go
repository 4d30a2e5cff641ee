package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/response"
)

type CommentHandlers struct {
	comments CommentStore
	videos   VideoStore
	likes    LikeStore
	logger   *logrus.Logger
}

func NewCommentHandlers(comments CommentStore, videos VideoStore, likes LikeStore, logger *logrus.Logger) *CommentHandlers {
	return &CommentHandlers{
		comments: comments,
		videos:   videos,
		likes:    likes,
		logger:   logger,
	}
}

// List returns a page of a video's comments, newest first
// GET /api/v1/comments/:videoId
func (h *CommentHandlers) List(c *gin.Context) {
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		fail(c, err)
		return
	}
	page, err := paginationQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.videos.FindByID(ctx, videoID); err != nil {
		fail(c, storeError(h.logger, err, "video not found", "find video"))
		return
	}

	result, err := h.comments.ListByVideo(ctx, videoID, page)
	if err != nil {
		fail(c, storeError(h.logger, err, "comments not found", "list comments"))
		return
	}

	response.OK(c, result, "comments fetched successfully")
}

// Create comments on a video as the caller
// POST /api/v1/comments/:videoId
func (h *CommentHandlers) Create(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		fail(c, err)
		return
	}
	content, err := bindContent(c)
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.videos.FindByID(ctx, videoID); err != nil {
		fail(c, storeError(h.logger, err, "video not found", "find video"))
		return
	}

	comment := &models.Comment{Content: content, Video: videoID, Owner: actor.ID}
	if err := h.comments.Create(ctx, comment); err != nil {
		fail(c, storeError(h.logger, err, "comment not found", "create comment"))
		return
	}

	response.Created(c, comment, "comment added successfully")
}

// Update replaces the content of the caller's comment
// PATCH /api/v1/comments/c/:commentId
func (h *CommentHandlers) Update(c *gin.Context) {
	comment, ok := h.ownedComment(c)
	if !ok {
		return
	}
	content, err := bindContent(c)
	if err != nil {
		fail(c, err)
		return
	}

	updated, err := h.comments.UpdateContent(c.Request.Context(), comment.ID, content)
	if err != nil {
		fail(c, storeError(h.logger, err, "comment not found", "update comment"))
		return
	}

	response.OK(c, updated, "comment updated successfully")
}

// Delete removes the caller's comment and its likes
// DELETE /api/v1/comments/c/:commentId
func (h *CommentHandlers) Delete(c *gin.Context) {
	comment, ok := h.ownedComment(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.comments.Delete(ctx, comment.ID); err != nil {
		fail(c, storeError(h.logger, err, "comment not found", "delete comment"))
		return
	}
	if err := h.likes.DeleteByTargets(ctx, models.LikeTargetComment, comment.ID); err != nil {
		h.logger.WithError(err).WithField("comment_id", comment.ID.Hex()).Warn("Failed to delete likes of comment")
	}

	response.OK(c, gin.H{}, "comment deleted successfully")
}

func (h *CommentHandlers) ownedComment(c *gin.Context) (*models.Comment, bool) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	commentID, err := objectIDParam(c, "commentId")
	if err != nil {
		fail(c, err)
		return nil, false
	}

	comment, err := h.comments.FindByID(c.Request.Context(), commentID)
	if err != nil {
		fail(c, storeError(h.logger, err, "comment not found", "find comment"))
		return nil, false
	}
	if err := requireOwner(actor, comment.Owner, "comment"); err != nil {
		fail(c, err)
		return nil, false
	}
	return comment, true
}
