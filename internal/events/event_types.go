package events

import (
	"time"

	"github.com/facilityops/helpdesk-gateway/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketReported   EventType = "ticket_reported"
	EventActionDispatched EventType = "action_dispatched"
	EventActionFailed     EventType = "action_failed"
	EventSessionStarted   EventType = "session_started"
	EventSessionEnded     EventType = "session_ended"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles,omitempty"`
}

// ActorFrom converts a domain actor.
func ActorFrom(actor domain.Actor) Actor {
	return Actor{ID: actor.ID, Roles: actor.Roles.Strings()}
}

// Event represents something the gateway did on behalf of an actor.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketReportedPayload payload.
type TicketReportedPayload struct {
	Title    string          `json:"title"`
	Severity domain.Severity `json:"severity"`
}

// ActionDispatchedPayload payload.
type ActionDispatchedPayload struct {
	Action domain.ActionID `json:"action"`
	Method string          `json:"method"`
	Path   string          `json:"path"`
}

// ActionFailedPayload payload.
type ActionFailedPayload struct {
	Action     domain.ActionID `json:"action"`
	Message    string          `json:"message"`
	StatusCode int             `json:"status_code,omitempty"`
}

// SessionPayload payload.
type SessionPayload struct {
	SessionID string `json:"session_id"`
}
