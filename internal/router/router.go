package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brightclass/portal-api/internal/config"
	"github.com/brightclass/portal-api/internal/handler"
	"github.com/brightclass/portal-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	StudentHandler      *handler.StudentHandler
	WorkspaceHandler    *handler.WorkspaceHandler
	NotificationHandler *handler.NotificationHandler
	TutorHandler        *handler.TutorHandler
	DashboardHandler    *handler.DashboardHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments", jwtMiddleware))
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions", jwtMiddleware))
	}

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students", jwtMiddleware))
	}

	if deps.WorkspaceHandler != nil {
		deps.WorkspaceHandler.RegisterNotebooks(api.Group("/notebooks", jwtMiddleware))
		deps.WorkspaceHandler.RegisterSpreadsheets(api.Group("/spreadsheets", jwtMiddleware))
	}

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications", jwtMiddleware))
	}

	if deps.TutorHandler != nil {
		deps.TutorHandler.Register(api.Group("/tutor", jwtMiddleware))
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", jwtMiddleware))
	}
}
