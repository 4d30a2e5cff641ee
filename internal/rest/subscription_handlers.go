package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/kafka"
	"github.com/yourusername/video-sharing-platform/internal/metrics"
	"github.com/yourusername/video-sharing-platform/internal/models"
	"github.com/yourusername/video-sharing-platform/internal/response"
)

type SubscriptionHandlers struct {
	subscriptions SubscriptionStore
	users         UserStore
	events        EventEmitter
	logger        *logrus.Logger
}

func NewSubscriptionHandlers(subscriptions SubscriptionStore, users UserStore, events EventEmitter, logger *logrus.Logger) *SubscriptionHandlers {
	return &SubscriptionHandlers{
		subscriptions: subscriptions,
		users:         users,
		events:        events,
		logger:        logger,
	}
}

// Toggle subscribes the caller to a channel or unsubscribes them
// POST /api/v1/subscriptions/c/:channelId
func (h *SubscriptionHandlers) Toggle(c *gin.Context) {
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
	if channelID == actor.ID {
		fail(c, apperror.Validation("you cannot subscribe to your own channel"))
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.FindByID(ctx, channelID); err != nil {
		fail(c, storeError(h.logger, err, "channel not found", "find channel"))
		return
	}

	subscribed, err := h.subscriptions.Toggle(ctx, actor.ID, channelID)
	if err != nil {
		fail(c, storeError(h.logger, err, "channel not found", "toggle subscription"))
		return
	}

	metrics.RecordToggle("subscription", subscribed)
	h.events.Emit(ctx, kafka.NewActivityEvent(kafka.EventSubscriptionToggled, actor.ID.Hex(), "channel", channelID.Hex(), subscribed))

	message := "unsubscribed successfully"
	if subscribed {
		message = "subscribed successfully"
	}
	response.OK(c, models.SubscriptionToggle{Subscribed: subscribed}, message)
}

// Subscribers lists the subscribers of a channel
// GET /api/v1/subscriptions/c/:channelId
func (h *SubscriptionHandlers) Subscribers(c *gin.Context) {
	channelID, err := objectIDParam(c, "channelId")
	if err != nil {
		fail(c, err)
		return
	}

	profiles, err := h.subscriptions.Subscribers(c.Request.Context(), channelID)
	if err != nil {
		fail(c, storeError(h.logger, err, "channel not found", "list subscribers"))
		return
	}

	response.OK(c, nonNilProfiles(profiles), "subscribers fetched successfully")
}

// SubscribedChannels lists the channels a user subscribes to
// GET /api/v1/subscriptions/u/:subscriberId
func (h *SubscriptionHandlers) SubscribedChannels(c *gin.Context) {
	subscriberID, err := objectIDParam(c, "subscriberId")
	if err != nil {
		fail(c, err)
		return
	}

	profiles, err := h.subscriptions.SubscribedChannels(c.Request.Context(), subscriberID)
	if err != nil {
		fail(c, storeError(h.logger, err, "user not found", "list subscribed channels"))
		return
	}

	response.OK(c, nonNilProfiles(profiles), "subscribed channels fetched successfully")
}

// MySubscriptions lists the channels the caller subscribes to
// GET /api/v1/subscriptions/subscribed
func (h *SubscriptionHandlers) MySubscriptions(c *gin.Context) {
	actor, err := requireActor(c)
	if err != nil {
		fail(c, err)
		return
	}

	profiles, err := h.subscriptions.SubscribedChannels(c.Request.Context(), actor.ID)
	if err != nil {
		fail(c, storeError(h.logger, err, "user not found", "list subscribed channels"))
		return
	}

	response.OK(c, nonNilProfiles(profiles), "subscribed channels fetched successfully")
}

func nonNilProfiles(profiles []models.PublicProfile) []models.PublicProfile {
	if profiles == nil {
		return []models.PublicProfile{}
	}
	return profiles
}
