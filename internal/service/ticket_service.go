package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/clock"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/events"
	"github.com/spec-kit/ticketapp/internal/persistence"
	"github.com/spec-kit/ticketapp/internal/repository"
)

// TicketService coordinates ticket workflows for the current session. The
// owning key is derived from the session on every call.
type TicketService struct {
	sessions   repository.SessionRepository
	tickets    repository.TicketRepository
	locker     *persistence.KeyLocker
	ids        *IDGenerator
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

// TicketDependencies bundles repositories for ticket service. Locker must be
// shared with the AuthService of the same store.
type TicketDependencies struct {
	Sessions   repository.SessionRepository
	Tickets    repository.TicketRepository
	Locker     *persistence.KeyLocker
	IDs        *IDGenerator
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// NewTicketService wires dependencies.
func NewTicketService(deps TicketDependencies) *TicketService {
	if deps.Locker == nil {
		deps.Locker = persistence.NewKeyLocker()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.IDs == nil {
		deps.IDs = NewIDGenerator(deps.Clock)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &TicketService{
		sessions:   deps.Sessions,
		tickets:    deps.Tickets,
		locker:     deps.Locker,
		ids:        deps.IDs,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger,
	}
}

// withOwner runs fn with the current session and its ticket key locked.
// It returns ErrNoSession when nobody is logged in.
func (s *TicketService) withOwner(ctx context.Context, fn func(owner domain.Session) error) error {
	unlock := s.locker.Lock(repository.SessionKey)
	defer unlock()

	session, err := s.sessions.Load(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNoSession
	}

	unlockTickets := s.locker.Lock(repository.TicketsKey(session.Email))
	defer unlockTickets()
	return fn(*session)
}

// List returns the tickets of the current session, or an empty set when
// nobody is logged in.
func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	tickets := []domain.Ticket{}
	err := s.withOwner(ctx, func(owner domain.Session) error {
		var err error
		tickets, err = s.tickets.ListByOwner(ctx, owner.Email)
		return err
	})
	if errors.Is(err, ErrNoSession) {
		return []domain.Ticket{}, nil
	}
	return tickets, err
}

// Stats counts the current session's tickets per status.
func (s *TicketService) Stats(ctx context.Context) (domain.TicketStats, error) {
	tickets, err := s.List(ctx)
	if err != nil {
		return domain.TicketStats{}, err
	}
	return domain.CountTickets(tickets), nil
}

// Create appends a ticket with a store-assigned id and creation time.
func (s *TicketService) Create(ctx context.Context, input domain.TicketInput) (*domain.Ticket, error) {
	if err := validateTicket(input.Title, input.Status); err != nil {
		return nil, err
	}

	var created domain.Ticket
	var owner string
	err := s.withOwner(ctx, func(session domain.Session) error {
		owner = session.Email
		_, err := s.tickets.Modify(ctx, owner, func(tickets []domain.Ticket) ([]domain.Ticket, bool, error) {
			created = domain.Ticket{
				ID:          s.ids.Next(tickets),
				Title:       input.Title,
				Description: input.Description,
				Status:      input.Status,
				CreatedAt:   s.clock.Now().UTC(),
			}
			return append(tickets, created), true, nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTicketCreated, owner, events.TicketPayload{Ticket: created})
	return &created, nil
}

// Update replaces the ticket with the same id. A missing id leaves the set
// untouched and is not an error. A zero CreatedAt keeps the stored value.
func (s *TicketService) Update(ctx context.Context, ticket domain.Ticket) error {
	if err := validateTicket(ticket.Title, ticket.Status); err != nil {
		return err
	}

	var replaced bool
	var owner string
	err := s.withOwner(ctx, func(session domain.Session) error {
		owner = session.Email
		_, err := s.tickets.Modify(ctx, owner, func(tickets []domain.Ticket) ([]domain.Ticket, bool, error) {
			for i := range tickets {
				if tickets[i].ID != ticket.ID {
					continue
				}
				if ticket.CreatedAt.IsZero() {
					ticket.CreatedAt = tickets[i].CreatedAt
				}
				tickets[i] = ticket
				replaced = true
				return tickets, true, nil
			}
			return tickets, false, nil
		})
		return err
	})
	if err != nil {
		return err
	}

	if replaced {
		s.publish(ctx, events.EventTicketUpdated, owner, events.TicketPayload{Ticket: ticket})
	}
	return nil
}

// Delete removes the ticket with id. Deleting an absent id is a no-op.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	var removed bool
	var owner string
	err := s.withOwner(ctx, func(session domain.Session) error {
		owner = session.Email
		_, err := s.tickets.Modify(ctx, owner, func(tickets []domain.Ticket) ([]domain.Ticket, bool, error) {
			kept := make([]domain.Ticket, 0, len(tickets))
			for _, t := range tickets {
				if t.ID == id {
					removed = true
					continue
				}
				kept = append(kept, t)
			}
			return kept, removed, nil
		})
		return err
	})
	if err != nil {
		return err
	}

	if removed {
		s.publish(ctx, events.EventTicketDeleted, owner, events.TicketDeletedPayload{TicketID: id})
	}
	return nil
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, actor string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.NewEvent(eventType, actor, s.clock.Now(), payload))
}

func validateTicket(title string, status domain.TicketStatus) error {
	fields := fieldErrors{}
	if strings.TrimSpace(title) == "" {
		fields.add("title", "Title is required")
	}
	switch {
	case status == domain.TicketStatusUnset:
		fields.add("status", "Status is required")
	case !status.Persistable():
		fields.add("status", "Status must be one of open, in_progress, closed")
	}
	return fields.err()
}
