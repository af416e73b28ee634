package dto

import (
	"time"

	"github.com/spec-kit/ticketapp/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
}

// UpdateTicketRequest replaces every editable field of a ticket. A missing
// created_at keeps the stored one.
type UpdateTicketRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	CreatedAt   *time.Time          `json:"created_at,omitempty"`
}

// TicketResponse represents one ticket.
type TicketResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	CreatedAt   *time.Time          `json:"created_at,omitempty"`
}

// DashboardResponse summarizes the session's tickets.
type DashboardResponse struct {
	Session SessionResponse    `json:"session"`
	Stats   domain.TicketStats `json:"stats"`
}

// ToastResponse is the visible notification.
type ToastResponse struct {
	Message string           `json:"message"`
	Type    domain.ToastKind `json:"type"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
	}
	if !t.CreatedAt.IsZero() {
		created := t.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

// NewTicketResponses maps a ticket set, never returning nil.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, NewTicketResponse(t))
	}
	return out
}

// Ticket converts the request into a full replacement record.
func (r UpdateTicketRequest) Ticket(id int64) domain.Ticket {
	t := domain.Ticket{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
	}
	if r.CreatedAt != nil {
		t.CreatedAt = *r.CreatedAt
	}
	return t
}
