package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/api/http/handlers"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/auth"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Accounts.Register)
	authGroup.Post("/login", cfg.Accounts.Login)
	authGroup.Post("/password/reset/request", cfg.Accounts.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Accounts.ConfirmPasswordReset)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Accounts.Me)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", auth.RequireRole(domain.RoleStaff, domain.RoleAdmin), cfg.Tickets.UpdateStatus)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Post("/accounts", cfg.Accounts.CreateAccount)
	admin.Get("/accounts", cfg.Accounts.ListAccounts)
	admin.Delete("/accounts/:id", cfg.Accounts.DeleteAccount)
}
