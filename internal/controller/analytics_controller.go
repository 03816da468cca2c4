package controller

import (
	"guideline-agent-be/internal/pkg/serverutils"
	"guideline-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAnalyticsController interface {
	RegisterRoutes(r fiber.Router)
	Snapshot(ctx *fiber.Ctx) error
}

type analyticsController struct {
	analyticsService service.IAnalyticsService
}

func NewAnalyticsController(analyticsService service.IAnalyticsService) IAnalyticsController {
	return &analyticsController{
		analyticsService: analyticsService,
	}
}

func (c *analyticsController) RegisterRoutes(r fiber.Router) {
	r.Get("/analytics", c.Snapshot)
}

func (c *analyticsController) Snapshot(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get analytics", c.analyticsService.Snapshot()))
}
