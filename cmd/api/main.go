package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticketapp/internal/api/http"
	"github.com/spec-kit/ticketapp/internal/app"
	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, *cfg, logger, app.Options{})
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	defer application.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	server := httptransport.NewServer(application)
	logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("storage_driver", cfg.Storage.Driver))
	return serve(server, cfg.App.Addr(), logger, sigCh)
}

// serve blocks until the listener fails or a stop signal arrives.
func serve(server *fiber.App, addr string, logger *zap.Logger, stop <-chan os.Signal) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- server.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("listen %s: %w", addr, err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
