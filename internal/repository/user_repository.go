package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/persistence"
)

// ErrAccountNotFound is returned when no account matches an email.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository reads and writes the account directory. The directory
// is one stored array; callers serialize Append against AccountsKey.
type AccountRepository interface {
	List(ctx context.Context) ([]domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Append(ctx context.Context, account domain.Account) error
}

type accountRepository struct {
	store  persistence.Store
	logger *zap.Logger
}

// NewAccountRepository returns a store-backed implementation.
func NewAccountRepository(store persistence.Store, logger *zap.Logger) AccountRepository {
	return &accountRepository{store: store, logger: logger}
}

func (r *accountRepository) List(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if _, err := loadJSON(ctx, r.store, r.logger, AccountsKey, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	accounts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Email == email {
			return &accounts[i], nil
		}
	}
	return nil, ErrAccountNotFound
}

func (r *accountRepository) Append(ctx context.Context, account domain.Account) error {
	accounts, err := r.List(ctx)
	if err != nil {
		return err
	}
	return saveJSON(ctx, r.store, AccountsKey, append(accounts, account))
}
