package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketapp/internal/api/http/handlers"
	"github.com/spec-kit/ticketapp/internal/app"
	"github.com/spec-kit/ticketapp/internal/auth"
)

// NewServer builds the fiber application serving a.
func NewServer(a *app.App) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:               a.Config.App.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(server, a.Logger, a.Metrics, a.Config.App.RequestTimeout())

	RegisterRoutes(server, RouteConfig{
		Health:         handlers.NewHealthHandler(a.Config.App.Name, a.Config.App.Version, a.Backend.Driver, a.Backend),
		Users:          handlers.NewUsersHandler(a.Auth, a.Tokens, a.Gate),
		Tickets:        handlers.NewTicketsHandler(a.Tickets),
		Toasts:         handlers.NewToastHandler(a.Toasts),
		Metrics:        handlers.NewMetricsHandler(a.Metrics),
		Gate:           a.Gate,
		AuthMiddleware: auth.NewAuthMiddleware(a.Tokens, a.Auth),
	})
	return server
}
