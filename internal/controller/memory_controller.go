package controller

import (
	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/pkg/serverutils"
	"jenny-assistant-be/internal/service"
	"jenny-assistant-be/pkg/assistant"

	"github.com/gofiber/fiber/v2"
)

type IMemoryController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Remember(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Forget(ctx *fiber.Ctx) error
}

type memoryController struct {
	service service.IMemoryService
}

func NewMemoryController(service service.IMemoryService) IMemoryController {
	return &memoryController{service: service}
}

func (c *memoryController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/memory/v1")
	h.Use(auth)
	h.Post("/remember", c.Remember)
	h.Get("/search", c.Search)
	h.Delete("/:user_id", c.Forget)
}

func (c *memoryController) Remember(ctx *fiber.Ctx) error {
	var req dto.RememberRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if !serverutils.CallerMatches(ctx, req.UserId) {
		return fiber.ErrForbidden
	}

	res, err := c.service.Remember(ctx.UserContext(), &req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("Memory saved", res))
}

func (c *memoryController) Search(ctx *fiber.Ctx) error {
	userId := ctx.Query("user_id")
	query := ctx.Query("q")
	if userId == "" {
		return assistant.ErrUserRequired
	}
	if query == "" {
		return assistant.ErrEmptyQuery
	}
	if !serverutils.CallerMatches(ctx, userId) {
		return fiber.ErrForbidden
	}

	res, err := c.service.Search(ctx.UserContext(), userId, query, ctx.QueryInt("limit", 5))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search memory", res))
}

func (c *memoryController) Forget(ctx *fiber.Ctx) error {
	userId := ctx.Params("user_id")
	if !serverutils.CallerMatches(ctx, userId) {
		return fiber.ErrForbidden
	}

	if err := c.service.Forget(ctx.UserContext(), userId); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Memories cleared", nil))
}
