package kafka

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventUserRegistered      EventType = "user.registered"
	EventVideoUploaded       EventType = "video.uploaded"
	EventVideoDeleted        EventType = "video.deleted"
	EventVideoPublishToggled EventType = "video.publish_toggled"
	EventLikeToggled         EventType = "like.toggled"
	EventSubscriptionToggled EventType = "subscription.toggled"
)

// ActivityEvent is published for state changes other services may react to
type ActivityEvent struct {
	EventID    string    `json:"event_id"` // UUID for idempotency
	Type       EventType `json:"type"`
	ActorID    string    `json:"actor_id"`
	TargetID   string    `json:"target_id"`
	TargetType string    `json:"target_type"`
	// Active is the state left behind by a toggle
	Active    bool      `json:"active"`
	Timestamp time.Time `json:"timestamp"`
}

// NewActivityEvent stamps a new event with an id and the current time
func NewActivityEvent(eventType EventType, actorID, targetType, targetID string, active bool) ActivityEvent {
	return ActivityEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		ActorID:    actorID,
		TargetID:   targetID,
		TargetType: targetType,
		Active:     active,
		Timestamp:  time.Now().UTC(),
	}
}
