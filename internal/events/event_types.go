package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticketapp/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered EventType = "account_registered"
	EventSessionStarted    EventType = "session_started"
	EventSessionEnded      EventType = "session_ended"
	EventTicketCreated     EventType = "ticket_created"
	EventTicketUpdated     EventType = "ticket_updated"
	EventTicketDeleted     EventType = "ticket_deleted"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventAccountRegistered,
	EventSessionStarted,
	EventSessionEnded,
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketDeleted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, actor string, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: at.UTC(),
		Payload:   payload,
	}
}

// AccountPayload describes a registered account. The password never leaves
// the directory.
type AccountPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TicketPayload carries the ticket as stored after the change.
type TicketPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// TicketDeletedPayload identifies a removed ticket.
type TicketDeletedPayload struct {
	TicketID int64 `json:"ticket_id"`
}
