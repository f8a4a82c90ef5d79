package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskdesk/taskdesk-api/internal/config"
	"github.com/taskdesk/taskdesk-api/internal/handler"
	"github.com/taskdesk/taskdesk-api/internal/middleware"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/observability"
	"github.com/taskdesk/taskdesk-api/internal/repository"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	TaskHandler        *handler.TaskHandler
	UserHandler        *handler.UserHandler
	ActivityLogHandler *handler.ActivityLogHandler
	AdminHandler       *handler.AdminHandler
	SeedHandler        *handler.SeedHandler

	UserRepository repository.UserRepository
	TokenRevoker   middleware.TokenRevoker

	LoginLimiter fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	if deps.AuthHandler != nil {
		login := api.Group("/auth")
		if deps.LoginLimiter != nil {
			login.Post("/login", deps.LoginLimiter, deps.AuthHandler.Login)
		} else {
			login.Post("/login", deps.AuthHandler.Login)
		}
	}

	// Everything below requires a valid token and a loaded, active account.
	authed := api.Group("",
		middleware.JWTProtected(cfg.JWTSecret, deps.TokenRevoker),
		middleware.CurrentUser(deps.UserRepository),
	)

	if deps.AuthHandler != nil {
		authed.Post("/auth/logout", deps.AuthHandler.Logout)
		authed.Get("/auth/me", deps.AuthHandler.Me)
	}

	if deps.TaskHandler != nil {
		tasks := authed.Group("/tasks")
		tasks.Get("/", deps.TaskHandler.List)
		tasks.Post("/", deps.TaskHandler.Create)
		tasks.Get("/:id", deps.TaskHandler.Get)
		tasks.Patch("/:id", deps.TaskHandler.Update)
		tasks.Put("/:id", deps.TaskHandler.Update)
		tasks.Delete("/:id", deps.TaskHandler.Delete)
	}

	if deps.UserHandler != nil {
		users := authed.Group("/users")
		users.Get("/", deps.UserHandler.List)
		users.Post("/", deps.UserHandler.Create)
		users.Get("/:id", deps.UserHandler.Get)
		users.Patch("/:id", deps.UserHandler.Update)
		users.Put("/:id", deps.UserHandler.Update)
		users.Delete("/:id", deps.UserHandler.Delete)
	}

	if deps.ActivityLogHandler != nil {
		logs := authed.Group("/logs", middleware.RequireRole(models.RoleAdmin))
		logs.Get("/", deps.ActivityLogHandler.List)
	}

	if deps.AdminHandler != nil {
		admin := authed.Group("/admin", middleware.RequireRole(models.RoleAdmin))
		admin.Post("/overdue-scan", deps.AdminHandler.OverdueScan)
	}

	if deps.SeedHandler != nil {
		seed := app.Group("/api/v1/seed")
		deps.SeedHandler.Register(seed)
	}
}
