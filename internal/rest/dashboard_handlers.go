package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/repository"
	"github.com/yourusername/video-sharing-platform/internal/response"
)

type DashboardHandlers struct {
	stats  StatsProvider
	videos VideoStore
	logger *logrus.Logger
}

func NewDashboardHandlers(stats StatsProvider, videos VideoStore, logger *logrus.Logger) *DashboardHandlers {
	return &DashboardHandlers{
		stats:  stats,
		videos: videos,
		logger: logger,
	}
}

// Stats returns totals for the caller's channel
// GET /api/v1/dashboard/stats
func (h *DashboardHandlers) Stats(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}

	stats, err := h.stats.ChannelStats(c.Request.Context(), actor.ID)
	if err != nil {
		fail(c, storeError(h.logger, err, "channel not found", "compute channel stats"))
		return
	}

	response.OK(c, stats, "channel stats fetched successfully")
}

// ChannelVideos returns a page of a channel's videos. Unpublished videos are
// included only for the channel owner.
// GET /api/v1/dashboard/videos/:channelId
func (h *DashboardHandlers) ChannelVideos(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}
	channelID, err := objectIDParam(c, "channelId")
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

	filter := repository.VideoFilter{OwnerID: &channelID, PublishedOnly: channelID != actor.ID}
	result, err := h.videos.List(c.Request.Context(), filter, sort, page)
	if err != nil {
		fail(c, storeError(h.logger, err, "videos not found", "list channel videos"))
		return
	}

	response.OK(c, result, "channel videos fetched successfully")
}
