package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	TypeSessionCreated   = "SESSION_CREATED"
	TypeSessionExtended  = "SESSION_EXTENDED"
	TypeSessionExpiring  = "SESSION_EXPIRING"
	TypeSessionExpired   = "SESSION_EXPIRED"
	TypeSessionDestroyed = "SESSION_DESTROYED"
)

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewSessionEvent builds a lifecycle event for the given session.
func NewSessionEvent(eventType, sessionID, email string, at time.Time) Event {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"email":      email,
		},
		OccurredAt: at,
	}
}
