package controller

import (
	"guideline-agent-be/internal/pkg/serverutils"
	"guideline-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type conversationController struct {
	conversationService service.IConversationService
}

func NewConversationController(conversationService service.IConversationService) IConversationController {
	return &conversationController{
		conversationService: conversationService,
	}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversations")
	h.Get(":sessionId", c.Show)
	h.Delete(":sessionId", c.Delete)
}

func (c *conversationController) Show(ctx *fiber.Ctx) error {
	res, err := c.conversationService.GetBySession(ctx.UserContext(), ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get conversation", res))
}

func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	if err := c.conversationService.DeleteBySession(ctx.UserContext(), ctx.Params("sessionId")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete conversation", nil))
}
