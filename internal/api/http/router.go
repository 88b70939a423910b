package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Customers      *handlers.CustomersHandler
	Tickets        *handlers.TicketsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Paths are fixed by the existing web client.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	api.Post("/register", cfg.Auth.Register)
	api.Post("/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAgent())
	protected.Post("/logout", cfg.Auth.Logout)
	protected.Get("/check_auth", cfg.Auth.CheckAuth)

	protected.Get("/view_customers", cfg.Customers.List)
	protected.Post("/add_customers", cfg.Customers.Create)
	protected.Get("/get_customers/:name", cfg.Customers.Get)
	protected.Put("/update_customers/:name", cfg.Customers.Update)
	protected.Delete("/delete_customers/:name", cfg.Customers.Delete)

	protected.Get("/view_tickets", cfg.Tickets.List)
	protected.Post("/add_tickets", cfg.Tickets.Create)
	protected.Put("/tickets/:id", cfg.Tickets.Update)
	protected.Delete("/tickets/:id", cfg.Tickets.Delete)
	protected.Post("/tickets/:id/assign", cfg.Tickets.Assign)

	protected.Get("/dashboard/stats", cfg.Dashboard.Stats)
}
