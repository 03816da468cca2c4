package server

import (
	"context"
	"log"

	"guideline-agent-be/internal/bootstrap"
	"guideline-agent-be/internal/config"
	"guideline-agent-be/internal/pkg/serverutils"
	"guideline-agent-be/internal/service"
	"guideline-agent-be/pkg/matching"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

// errorStatuses maps domain errors to the status they are rendered with.
var errorStatuses = []serverutils.StatusMapping{
	{Err: service.ErrGuidelineNotFound, Status: fiber.StatusNotFound},
	{Err: service.ErrConversationNotFound, Status: fiber.StatusNotFound},
	{Err: service.ErrInvalidPriority, Status: fiber.StatusBadRequest},
	{Err: service.ErrGuidelineNoEmbedding, Status: fiber.StatusBadRequest},
	{Err: service.ErrEmbeddingNotAvailable, Status: fiber.StatusServiceUnavailable},
	{Err: matching.ErrCatalogUnavailable, Status: fiber.StatusServiceUnavailable},
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(errorStatuses...))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.HealthController.RegisterRoutes(app)

	api := app.Group("/api")

	c.ChatController.RegisterRoutes(api)
	c.GuidelineController.RegisterRoutes(api)
	c.ConversationController.RegisterRoutes(api)
	c.EmbeddingController.RegisterRoutes(api)
	c.AnalyticsController.RegisterRoutes(api)
}
