package controller

import (
	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/pkg/serverutils"
	"jenny-assistant-be/internal/service"
	"jenny-assistant-be/pkg/assistant"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Ask(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	ClearSession(ctx *fiber.Ctx) error
	ListReminders(ctx *fiber.Ctx) error
	CancelReminder(ctx *fiber.Ctx) error
}

type assistantController struct {
	conversation service.IConversationService
	reminders    service.IReminderService
}

func NewAssistantController(conversation service.IConversationService, reminders service.IReminderService) IAssistantController {
	return &assistantController{conversation: conversation, reminders: reminders}
}

func (c *assistantController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/assistant/v1")
	h.Use(auth)
	h.Post("/ask", c.Ask)
	h.Get("/session/:user_id", c.GetSession)
	h.Delete("/session/:user_id", c.ClearSession)
	h.Get("/reminders/:user_id", c.ListReminders)
	h.Delete("/reminders/:user_id/:id", c.CancelReminder)
}

func (c *assistantController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if !serverutils.CallerMatches(ctx, req.UserId) {
		return fiber.ErrForbidden
	}

	res, err := c.conversation.HandleMessage(ctx.UserContext(), &assistant.IncomingMessage{
		UserID:   req.UserId,
		Text:     req.Text,
		VoiceURL: req.VoiceURL,
		ImageURL: req.ImageURL,
		Metadata: req.Metadata,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *assistantController) GetSession(ctx *fiber.Ctx) error {
	userId := ctx.Params("user_id")
	if !serverutils.CallerMatches(ctx, userId) {
		return fiber.ErrForbidden
	}

	res, err := c.conversation.GetSession(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *assistantController) ClearSession(ctx *fiber.Ctx) error {
	userId := ctx.Params("user_id")
	if !serverutils.CallerMatches(ctx, userId) {
		return fiber.ErrForbidden
	}

	if err := c.conversation.ClearSession(ctx.UserContext(), userId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session cleared", nil))
}

func (c *assistantController) ListReminders(ctx *fiber.Ctx) error {
	userId := ctx.Params("user_id")
	if !serverutils.CallerMatches(ctx, userId) {
		return fiber.ErrForbidden
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list reminders", c.reminders.List(userId)))
}

func (c *assistantController) CancelReminder(ctx *fiber.Ctx) error {
	userId := ctx.Params("user_id")
	if !serverutils.CallerMatches(ctx, userId) {
		return fiber.ErrForbidden
	}

	id := ctx.Params("id")
	owned := false
	for _, job := range c.reminders.List(userId) {
		if job.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		return fiber.NewError(fiber.StatusNotFound, "reminder not found")
	}

	if err := c.reminders.Cancel(id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Reminder cancelled", nil))
}
