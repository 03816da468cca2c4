package controller

import (
	"guideline-agent-be/internal/dto"
	"guideline-agent-be/internal/pkg/serverutils"
	"guideline-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IGuidelineController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	GetActive(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	GetByCategory(ctx *fiber.Ctx) error
	GetStatistics(ctx *fiber.Ctx) error
	GetUsageReport(ctx *fiber.Ctx) error
	GetSimilar(ctx *fiber.Ctx) error
}

type guidelineController struct {
	guidelineService service.IGuidelineService
	embeddingService service.IEmbeddingService
}

func NewGuidelineController(guidelineService service.IGuidelineService, embeddingService service.IEmbeddingService) IGuidelineController {
	return &guidelineController{
		guidelineService: guidelineService,
		embeddingService: embeddingService,
	}
}

func (c *guidelineController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/guidelines")
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get("active", c.GetActive)
	h.Get("search", c.Search)
	h.Get("stats", c.GetStatistics)
	h.Get("usage", c.GetUsageReport)
	h.Get("category/:category", c.GetByCategory)
	h.Get(":id/similar", c.GetSimilar)
}

func (c *guidelineController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.guidelineService.GetAll(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get guidelines", res))
}

func (c *guidelineController) GetActive(ctx *fiber.Ctx) error {
	res, err := c.guidelineService.GetActive(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get active guidelines", res))
}

func (c *guidelineController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateGuidelineRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.guidelineService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create guideline", res))
}

func (c *guidelineController) Search(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Query parameter q is required")
	}

	res, err := c.guidelineService.Search(ctx.UserContext(), query, ctx.QueryInt("limit", 0))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search guidelines", res))
}

func (c *guidelineController) GetByCategory(ctx *fiber.Ctx) error {
	res, err := c.guidelineService.GetByCategory(ctx.UserContext(), ctx.Params("category"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get guidelines by category", res))
}

func (c *guidelineController) GetStatistics(ctx *fiber.Ctx) error {
	var conversationId *uuid.UUID
	if raw := ctx.Query("conversation_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid conversation_id")
		}
		conversationId = &id
	}

	res, err := c.guidelineService.GetUsageStatistics(ctx.UserContext(), conversationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get guideline statistics", res))
}

func (c *guidelineController) GetUsageReport(ctx *fiber.Ctx) error {
	res, err := c.guidelineService.GetUsageReport(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get guideline usage", res))
}

func (c *guidelineController) GetSimilar(ctx *fiber.Ctx) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.embeddingService.FindSimilarGuidelines(ctx.UserContext(), id, ctx.QueryFloat("threshold", 0))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success find similar guidelines", res))
}

func parseUUIDParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}
