package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/persistence"
)

// TicketModifier rewrites a ticket set. It returns the new set and whether
// anything changed.
type TicketModifier func(tickets []domain.Ticket) ([]domain.Ticket, bool, error)

// TicketRepository encapsulates ticket persistence. A set is always read
// and written whole under TicketsKey(owner).
type TicketRepository interface {
	ListByOwner(ctx context.Context, owner string) ([]domain.Ticket, error)
	// Modify runs a read-modify-persist cycle and returns the resulting set.
	// Callers serialize it against TicketsKey(owner).
	Modify(ctx context.Context, owner string, fn TicketModifier) ([]domain.Ticket, error)
	DeleteByOwner(ctx context.Context, owner string) error
}

type ticketRepository struct {
	store  persistence.Store
	logger *zap.Logger
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(store persistence.Store, logger *zap.Logger) TicketRepository {
	return &ticketRepository{store: store, logger: logger}
}

func (r *ticketRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Ticket, error) {
	tickets := []domain.Ticket{}
	found, err := loadJSON(ctx, r.store, r.logger, TicketsKey(owner), &tickets)
	if err != nil {
		return nil, err
	}
	if !found || tickets == nil {
		return []domain.Ticket{}, nil
	}
	return tickets, nil
}

func (r *ticketRepository) Modify(ctx context.Context, owner string, fn TicketModifier) ([]domain.Ticket, error) {
	current, err := r.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	updated, changed, err := fn(current)
	if err != nil {
		return nil, err
	}
	if !changed {
		return current, nil
	}
	if updated == nil {
		updated = []domain.Ticket{}
	}
	if err := saveJSON(ctx, r.store, TicketsKey(owner), updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ticketRepository) DeleteByOwner(ctx context.Context, owner string) error {
	return r.store.Delete(ctx, TicketsKey(owner))
}
