package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusUnset      TicketStatus = ""
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// Persistable reports whether the status may be written to the store.
// The unset value only exists while a ticket form is being edited.
func (s TicketStatus) Persistable() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is a unit of trackable work owned by one session.
type Ticket struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TicketStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt,omitzero"`
}

// TicketInput is the caller-supplied part of a new ticket. The store assigns
// the id and creation time.
type TicketInput struct {
	Title       string
	Description string
	Status      TicketStatus
}

// TicketStats counts tickets per status for the dashboard.
type TicketStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Closed     int `json:"closed"`
}

// CountTickets tallies tickets by status.
func CountTickets(tickets []Ticket) TicketStats {
	stats := TicketStats{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case TicketStatusOpen:
			stats.Open++
		case TicketStatusInProgress:
			stats.InProgress++
		case TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats
}
