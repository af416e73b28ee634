package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/auth"
	"github.com/spec-kit/ticketapp/internal/clock"
	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/events"
	"github.com/spec-kit/ticketapp/internal/persistence"
	"github.com/spec-kit/ticketapp/internal/repository"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// How a session was started, carried in session_started events.
const (
	SessionViaLogin  = "login"
	SessionViaSignup = "signup"
)

// SignupResult mirrors the outcome shape of a signup form submission.
type SignupResult struct {
	Success bool
	Reason  error
}

// SessionPayload accompanies session events.
type SessionPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Via   string `json:"via,omitempty"`
}

// AuthService owns the session and the account directory of one store.
type AuthService struct {
	accounts       repository.AccountRepository
	sessions       repository.SessionRepository
	tickets        repository.TicketRepository
	locker         *persistence.KeyLocker
	hasher         auth.PasswordHasher
	verifyPassword bool
	dispatcher     events.Dispatcher
	clock          clock.Clock
	logger         *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	Accounts   repository.AccountRepository
	Sessions   repository.SessionRepository
	Tickets    repository.TicketRepository
	Locker     *persistence.KeyLocker
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	if deps.Locker == nil {
		deps.Locker = persistence.NewKeyLocker()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &AuthService{
		accounts:       deps.Accounts,
		sessions:       deps.Sessions,
		tickets:        deps.Tickets,
		locker:         deps.Locker,
		hasher:         auth.NewPasswordHasher(cfg.PasswordHashing != config.PasswordHashingPlain, cfg.BcryptCost),
		verifyPassword: cfg.VerifyPassword,
		dispatcher:     deps.Dispatcher,
		clock:          deps.Clock,
		logger:         deps.Logger,
	}
}

// LoadSession returns the current session or nil when nobody is logged in.
func (s *AuthService) LoadSession(ctx context.Context) (*domain.Session, error) {
	unlock := s.locker.Lock(repository.SessionKey)
	defer unlock()
	return s.sessions.Load(ctx)
}

// Login makes the account registered under email the current session. It
// reports false when no account matches or, with password verification
// enabled, when the password does not match.
func (s *AuthService) Login(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	fields := fieldErrors{}
	validateEmail(fields, email)
	if password == "" {
		fields.add("password", "Password is required")
	}
	if err := fields.err(); err != nil {
		return false, err
	}
	return s.login(ctx, email, password, SessionViaLogin)
}

func (s *AuthService) login(ctx context.Context, email, password, via string) (bool, error) {
	session, err := s.startSession(ctx, email, password)
	if err != nil || session == nil {
		return false, err
	}

	s.publish(ctx, events.EventSessionStarted, session.Email, SessionPayload{Name: session.Name, Email: session.Email, Via: via})
	return true, nil
}

func (s *AuthService) startSession(ctx context.Context, email, password string) (*domain.Session, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.verifyPassword && !s.hasher.Matches(account.Password, password) {
		return nil, nil
	}

	session := account.Session()
	unlock := s.locker.Lock(repository.SessionKey)
	defer unlock()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Signup registers a new account and logs it in. A taken email is reported
// through the result, not the error.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (SignupResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	fields := fieldErrors{}
	if name == "" {
		fields.add("name", "Name is required")
	}
	validateEmail(fields, email)
	if password == "" {
		fields.add("password", "Password is required")
	}
	if err := fields.err(); err != nil {
		return SignupResult{}, err
	}

	created, err := s.register(ctx, name, email, password)
	if err != nil {
		return SignupResult{}, err
	}
	if !created {
		return SignupResult{Success: false, Reason: ErrDuplicateEmail}, nil
	}
	s.publish(ctx, events.EventAccountRegistered, email, events.AccountPayload{Name: name, Email: email})

	ok, err := s.login(ctx, email, password, SessionViaSignup)
	if err != nil {
		return SignupResult{}, err
	}
	return SignupResult{Success: ok}, nil
}

func (s *AuthService) register(ctx context.Context, name, email, password string) (bool, error) {
	unlock := s.locker.Lock(repository.AccountsKey)
	defer unlock()

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return false, err
	}

	stored, err := s.hasher.Encode(password)
	if err != nil {
		return false, err
	}
	if err := s.accounts.Append(ctx, domain.Account{Name: name, Email: email, Password: stored}); err != nil {
		return false, err
	}
	return true, nil
}

// Logout ends the current session and deletes the tickets it owned.
func (s *AuthService) Logout(ctx context.Context) error {
	session, err := s.endSession(ctx)
	if err != nil || session == nil {
		return err
	}
	s.publish(ctx, events.EventSessionEnded, session.Email, SessionPayload{Name: session.Name, Email: session.Email})
	return nil
}

func (s *AuthService) endSession(ctx context.Context) (*domain.Session, error) {
	unlock := s.locker.Lock(repository.SessionKey)
	defer unlock()

	session, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Clear(ctx); err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	unlockTickets := s.locker.Lock(repository.TicketsKey(session.Email))
	defer unlockTickets()
	if err := s.tickets.DeleteByOwner(ctx, session.Email); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, actor string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.NewEvent(eventType, actor, s.clock.Now(), payload))
}

func validateEmail(fields fieldErrors, email string) {
	switch {
	case email == "":
		fields.add("email", "Email is required")
	case !emailPattern.MatchString(email):
		fields.add("email", "Email address is invalid")
	}
}
