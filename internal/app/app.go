// Package app wires the store, services and notification pipeline shared by
// the HTTP server and the CLI.
package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/auth"
	"github.com/spec-kit/ticketapp/internal/clock"
	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/events"
	"github.com/spec-kit/ticketapp/internal/gate"
	"github.com/spec-kit/ticketapp/internal/observability"
	"github.com/spec-kit/ticketapp/internal/persistence"
	"github.com/spec-kit/ticketapp/internal/repository"
	"github.com/spec-kit/ticketapp/internal/service"
	"github.com/spec-kit/ticketapp/internal/toast"
	"github.com/spec-kit/ticketapp/internal/worker"
)

// Options tweaks construction. Zero values select production behavior.
type Options struct {
	Clock     clock.Clock
	ToastSink toast.Sink
}

// App is one origin: a store plus every component operating on it.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Backend    *persistence.Backend
	Dispatcher events.Dispatcher
	Toasts     *toast.Queue
	Auth       *service.AuthService
	Tickets    *service.TicketService
	Gate       *gate.Gate
	Tokens     *auth.TokenManager
	Metrics    *observability.Metrics

	notifier *worker.NotificationWorker
}

// New opens the configured store and builds the services on top of it.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	backend, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}

	var queueOpts []toast.Option
	if opts.ToastSink != nil {
		queueOpts = append(queueOpts, toast.WithSink(opts.ToastSink))
	}
	toasts := toast.NewQueue(clk, cfg.Notification.ToastDuration, queueOpts...)
	dispatcher := events.NewInMemoryDispatcher(logger)
	notifier := worker.NewNotificationWorker(cfg.Notification, dispatcher, toasts, logger)

	locker := persistence.NewKeyLocker()
	sessions := repository.NewSessionRepository(backend.Store, logger)
	accounts := repository.NewAccountRepository(backend.Store, logger)
	tickets := repository.NewTicketRepository(backend.Store, logger)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Accounts:   accounts,
		Sessions:   sessions,
		Tickets:    tickets,
		Locker:     locker,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		Sessions:   sessions,
		Tickets:    tickets,
		Locker:     locker,
		IDs:        service.NewIDGenerator(clk),
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Backend:    backend,
		Dispatcher: dispatcher,
		Toasts:     toasts,
		Auth:       authService,
		Tickets:    ticketService,
		Gate:       gate.New(authService, toasts),
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		Metrics:    observability.NewMetrics(),
		notifier:   notifier,
	}, nil
}

// Close releases the broker connection and the store.
func (a *App) Close() {
	a.notifier.Close()
	a.Backend.Close()
}
