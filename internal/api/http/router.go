package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/facilityops/helpdesk-gateway/internal/api/http/handlers"
	"github.com/facilityops/helpdesk-gateway/internal/auth"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Sessions       *handlers.SessionHandler
	Tickets        *handlers.TicketsHandler
	Dashboards     *handlers.DashboardHandler
	AuthMiddleware *auth.Middleware
	Metrics        nethttp.Handler
}

// RegisterRoutes wires HTTP routes. Everything after login passes through the
// role guard.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	app.Post("/auth/login", cfg.Sessions.Login)

	app.Use(cfg.AuthMiddleware.Load)

	app.Post("/auth/logout", auth.Guard(), cfg.Sessions.Logout)
	app.Get("/auth/session", auth.Guard(), cfg.Sessions.Current)

	app.Get("/reporter/dashboard", auth.Guard(domain.RoleReporter), cfg.Dashboards.Dashboard(domain.RoleReporter))
	app.Get("/staff/dashboard", auth.Guard(domain.RoleStaff), cfg.Dashboards.Dashboard(domain.RoleStaff))
	app.Get("/manager/dashboard", auth.Guard(domain.RoleManager, domain.RoleAdministrator), cfg.Dashboards.Dashboard(domain.RoleManager))
	app.Get("/admin/dashboard", auth.Guard(domain.RoleAdministrator), cfg.Dashboards.Dashboard(domain.RoleAdministrator))
	app.Get("/admin/dispatches", auth.Guard(domain.RoleAdministrator), cfg.Dashboards.Dispatches)

	tickets := app.Group("/tickets", auth.Guard())
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", auth.Guard(domain.RoleReporter), cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/actions/:action", cfg.Tickets.PerformAction)
}
