package ports

import "context"

type EventKind string

const (
	EventItineraryChanged EventKind = "itinerary.changed"
	EventRouteComputed    EventKind = "route.computed"
	EventNotification     EventKind = "notification"
)

// Event emitted by a planner session for downstream consumers.
type Event struct {
	Kind      EventKind `json:"kind"`
	SessionID string    `json:"session_id"`
	Version   uint64    `json:"version"`
	Message   string    `json:"message,omitempty"`
}

// Contract for delivering planner events. Implementations must not block
// the caller for long; delivery failures are logged, not returned to users.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}
