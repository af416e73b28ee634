package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketapp/internal/api/http/handlers"
	"github.com/spec-kit/ticketapp/internal/auth"
	"github.com/spec-kit/ticketapp/internal/gate"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Toasts         *handlers.ToastHandler
	Metrics        *handlers.MetricsHandler
	Gate           *gate.Gate
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Snapshot)
	app.Get("/toast", cfg.Toasts.Current)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Users.Signup)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", cfg.Users.Logout)
	authGroup.Get("/session", cfg.Users.Session)
	authGroup.Get("/return-path", cfg.Users.ReturnPath)

	protect := []fiber.Handler{gateMiddleware(cfg.Gate), cfg.AuthMiddleware.Handle}

	app.Get(gate.DashboardPath, append(protect, cfg.Tickets.Dashboard)...)

	tickets := app.Group(gate.TicketsPath, protect...)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
}
