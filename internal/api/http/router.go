package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spec-kit/safety-suggestions/internal/api/http/handlers"
	"github.com/spec-kit/safety-suggestions/internal/auth"
	"github.com/spec-kit/safety-suggestions/internal/upload"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Suggestions    *handlers.SuggestionsHandler
	Comments       *handlers.CommentsHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
	Uploads        *upload.Store
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	suggestions := api.Group("/suggestions", cfg.AuthMiddleware.Protect)
	suggestions.Post("/", upload.Middleware(cfg.Uploads), cfg.Suggestions.Create)
	suggestions.Get("/", auth.RequireAdmin(), cfg.Suggestions.ListAll)
	// Literal segments must be registered before "/:id".
	suggestions.Get("/analytics", auth.RequireAdmin(), cfg.Analytics.Get)
	suggestions.Get("/my", cfg.Suggestions.ListMine)
	suggestions.Get("/:id", cfg.Suggestions.Get)
	suggestions.Put("/:id/status", auth.RequireAdmin(), cfg.Suggestions.UpdateStatus)
	suggestions.Get("/:id/comments", cfg.Comments.List)
	suggestions.Post("/:id/comments", cfg.Comments.Add)
}

// AppConfig describes a fully wired Fiber application.
type AppConfig struct {
	Name       string
	BodyLimit  int
	Middleware MiddlewareConfig
	Routes     RouteConfig
}

// NewApp builds the Fiber app with the global middleware chain and every route.
func NewApp(cfg AppConfig) *fiber.App {
	if cfg.Middleware.Logger == nil {
		cfg.Middleware.Logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(cfg.Middleware.Logger, cfg.Middleware.Development),
	})
	RegisterMiddlewares(app, cfg.Middleware)
	RegisterRoutes(app, cfg.Routes)
	return app
}
