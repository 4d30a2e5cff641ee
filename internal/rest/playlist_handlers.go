package rest

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/response"
)

type PlaylistHandlers struct {
	playlists PlaylistStore
	videos    VideoStore
	users     UserStore
	logger    *logrus.Logger
}

func NewPlaylistHandlers(playlists PlaylistStore, videos VideoStore, users UserStore, logger *logrus.Logger) *PlaylistHandlers {
	return &PlaylistHandlers{
		playlists: playlists,
		videos:    videos,
		users:     users,
		logger:    logger,
	}
}

type playlistRequest struct {
	Name        *string `json:"name" form:"name"`
	Description *string `json:"description" form:"description"`
}

// Create makes an empty playlist owned by the caller
// POST /api/v1/playlist
func (h *PlaylistHandlers) Create(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req playlistRequest
	if err := bindBody(c, &req); err != nil {
		fail(c, err)
		return
	}
	name := trimmed(req.Name)
	if name == nil || *name == "" {
		fail(c, apperror.Validation("name is required"))
		return
	}

	playlist := &models.Playlist{Name: *name, Owner: actor.ID}
	if description := trimmed(req.Description); description != nil {
		playlist.Description = *description
	}
	if err := h.playlists.Create(c.Request.Context(), playlist); err != nil {
		fail(c, storeError(h.logger, err, "playlist not found", "create playlist"))
		return
	}

	response.Created(c, playlist, "playlist created successfully")
}

// ListByUser returns a user's playlists
// GET /api/v1/playlist/user/:userId
func (h *PlaylistHandlers) ListByUser(c *gin.Context) {
	userID, err := objectIDParam(c, "userId")
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.FindByID(ctx, userID); err != nil {
		fail(c, storeError(h.logger, err, "user not found", "find user"))
		return
	}

	playlists, err := h.playlists.ListByOwner(ctx, userID)
	if err != nil {
		fail(c, storeError(h.logger, err, "playlists not found", "list playlists"))
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}

	response.OK(c, playlists, "playlists fetched successfully")
}

// Get returns a playlist with its videos resolved in order
// GET /api/v1/playlist/:playlistId
func (h *PlaylistHandlers) Get(c *gin.Context) {
	playlistID, err := objectIDParam(c, "playlistId")
	if err != nil {
		fail(c, err)
		return
	}

	detail, err := h.playlists.Detail(c.Request.Context(), playlistID)
	if err != nil {
		fail(c, storeError(h.logger, err, "playlist not found", "fetch playlist"))
		return
	}

	response.OK(c, detail, "playlist fetched successfully")
}

// AddVideo appends a video to the caller's playlist
// PATCH /api/v1/playlist/add/:videoId/:playlistId
func (h *PlaylistHandlers) AddVideo(c *gin.Context) {
	playlist, ok := h.ownedPlaylist(c)
	if !ok {
		return
	}
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.videos.FindByID(ctx, videoID); err != nil {
		fail(c, storeError(h.logger, err, "video not found", "find video"))
		return
	}

	updated, err := h.playlists.AddVideo(ctx, playlist.ID, videoID)
	if err != nil {
		fail(c, storeError(h.logger, err, "playlist not found", "add video to playlist"))
		return
	}

	response.OK(c, updated, "video added to playlist")
}

// RemoveVideo takes a video out of the caller's playlist
// PATCH /api/v1/playlist/remove/:videoId/:playlistId
func (h *PlaylistHandlers) RemoveVideo(c *gin.Context) {
	playlist, ok := h.ownedPlaylist(c)
	if !ok {
		return
	}
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		fail(c, err)
		return
	}

	updated, err := h.playlists.RemoveVideo(c.Request.Context(), playlist.ID, videoID)
	if err != nil {
		fail(c, storeError(h.logger, err, "playlist not found", "remove video from playlist"))
		return
	}

	response.OK(c, updated, "video removed from playlist")
}

// Update renames or redescribes the caller's playlist
// PATCH /api/v1/playlist/:playlistId
func (h *PlaylistHandlers) Update(c *gin.Context) {
	playlist, ok := h.ownedPlaylist(c)
	if !ok {
		return
	}

	var req playlistRequest
	if err := bindBody(c, &req); err != nil {
		fail(c, err)
		return
	}
	update := models.PlaylistUpdate{
		Name:        trimmed(req.Name),
		Description: trimmed(req.Description),
	}
	if update.IsEmpty() {
		fail(c, apperror.Validation("name or description is required"))
		return
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		fail(c, apperror.Validation("name cannot be empty"))
		return
	}

	updated, err := h.playlists.Update(c.Request.Context(), playlist.ID, update)
	if err != nil {
		fail(c, storeError(h.logger, err, "playlist not found", "update playlist"))
		return
	}

	response.OK(c, updated, "playlist updated successfully")
}

// Delete removes the caller's playlist
// DELETE /api/v1/playlist/:playlistId
func (h *PlaylistHandlers) Delete(c *gin.Context) {
	playlist, ok := h.ownedPlaylist(c)
	if !ok {
		return
	}

	if err := h.playlists.Delete(c.Request.Context(), playlist.ID); err != nil {
		fail(c, storeError(h.logger, err, "playlist not found", "delete playlist"))
		return
	}

	response.OK(c, gin.H{}, "playlist deleted successfully")
}

func (h *PlaylistHandlers) ownedPlaylist(c *gin.Context) (*models.Playlist, bool) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	playlistID, err := objectIDParam(c, "playlistId")
	if err != nil {
		fail(c, err)
		return nil, false
	}

	playlist, err := h.playlists.FindByID(c.Request.Context(), playlistID)
	if err != nil {
		fail(c, storeError(h.logger, err, "playlist not found", "find playlist"))
		return nil, false
	}
	if err := requireOwner(actor, playlist.Owner, "playlist"); err != nil {
		fail(c, err)
		return nil, false
	}
	return playlist, true
}
