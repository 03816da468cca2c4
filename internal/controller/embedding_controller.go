package controller

import (
	"guideline-agent-be/internal/dto"
	"guideline-agent-be/internal/pkg/serverutils"
	"guideline-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IEmbeddingController interface {
	RegisterRoutes(r fiber.Router)
	Status(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
	Cleanup(ctx *fiber.Ctx) error
	TestSearch(ctx *fiber.Ctx) error
	GuidelineInfo(ctx *fiber.Ctx) error
}

type embeddingController struct {
	embeddingService service.IEmbeddingService
}

func NewEmbeddingController(embeddingService service.IEmbeddingService) IEmbeddingController {
	return &embeddingController{
		embeddingService: embeddingService,
	}
}

func (c *embeddingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/embeddings")
	h.Get("status", c.Status)
	h.Post("generate", c.Generate)
	h.Post("cleanup", c.Cleanup)
	h.Post("test", c.TestSearch)
	h.Get("guidelines/:id", c.GuidelineInfo)
}

func (c *embeddingController) Status(ctx *fiber.Ctx) error {
	res, err := c.embeddingService.Status(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get embedding status", res))
}

// Generate accepts an empty body to embed every guideline still missing an embedding.
func (c *embeddingController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateEmbeddingsRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	res, err := c.embeddingService.UpdateGuidelineEmbeddings(ctx.UserContext(), req.GuidelineIds)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate embeddings", res))
}

func (c *embeddingController) Cleanup(ctx *fiber.Ctx) error {
	days := ctx.QueryInt("days", 0)
	if days < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "days must be positive")
	}

	res, err := c.embeddingService.CleanupOldEmbeddings(ctx.UserContext(), days)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success cleanup embeddings", res))
}

func (c *embeddingController) TestSearch(ctx *fiber.Ctx) error {
	var req dto.VectorSearchTestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.embeddingService.TestVectorSearch(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success test vector search", res))
}

func (c *embeddingController) GuidelineInfo(ctx *fiber.Ctx) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.embeddingService.GetGuidelineEmbeddingInfo(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get guideline embedding", res))
}
