package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/persistence"
)

// SessionRepository persists the single active session of the origin.
type SessionRepository interface {
	// Load returns nil when no valid session is stored. An invalid entry is
	// removed.
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}

type sessionRepository struct {
	store  persistence.Store
	logger *zap.Logger
}

// NewSessionRepository returns a store-backed implementation.
func NewSessionRepository(store persistence.Store, logger *zap.Logger) SessionRepository {
	return &sessionRepository{store: store, logger: logger}
}

func (r *sessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	var session *domain.Session
	found, err := loadJSON(ctx, r.store, r.logger, SessionKey, &session)
	if err != nil || !found {
		return nil, err
	}
	if session == nil || !session.Valid() {
		r.logger.Warn("discarding incomplete session", zap.String("key", SessionKey))
		if err := r.store.Delete(ctx, SessionKey); err != nil {
			return nil, fmt.Errorf("delete incomplete session: %w", err)
		}
		return nil, nil
	}
	return &domain.Session{Name: session.Name, Email: session.Email}, nil
}

func (r *sessionRepository) Save(ctx context.Context, session domain.Session) error {
	return saveJSON(ctx, r.store, SessionKey, session)
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, SessionKey)
}
