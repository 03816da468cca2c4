package controller

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	checks map[string]HealthCheck
}

func NewHealthController(checks map[string]HealthCheck) IHealthController {
	return &healthController{checks: checks}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

// Health answers 503 when any dependency check fails.
func (c *healthController) Health(ctx *fiber.Ctx) error {
	checkCtx, cancel := context.WithTimeout(ctx.UserContext(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	dependencies := make(map[string]string, len(c.checks))
	for name, check := range c.checks {
		if err := check(checkCtx); err != nil {
			dependencies[name] = err.Error()
			status = "degraded"
			continue
		}
		dependencies[name] = "ok"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return ctx.Status(code).JSON(fiber.Map{
		"status":       status,
		"timestamp":    time.Now().UTC(),
		"dependencies": dependencies,
	})
}
