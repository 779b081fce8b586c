package controller

import (
	"context"
	"time"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/internal/pkg/serverutils"
	"jenny-assistant-be/internal/service"
	"jenny-assistant-be/pkg/assistant"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const oauthStateTTL = 10 * time.Minute

type CalendarConnector interface {
	AuthURL(provider, state string) (string, error)
	Exchange(ctx context.Context, provider, userID, code string) error
}

type ICalendarController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Connect(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Disconnect(ctx *fiber.Ctx) error
}

type calendarController struct {
	connector CalendarConnector
	tokens    service.ICalendarTokenService
	providers []string
	// oauth state -> user id
	states *cache.Cache
	logger logger.ILogger
}

func NewCalendarController(connector CalendarConnector, tokens service.ICalendarTokenService, providers []string, log logger.ILogger) ICalendarController {
	return &calendarController{
		connector: connector,
		tokens:    tokens,
		providers: providers,
		states:    cache.New(oauthStateTTL, 2*oauthStateTTL),
		logger:    log,
	}
}

func (c *calendarController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/calendar/v1")
	// the provider redirects the browser here without our token
	h.Get("/callback/:provider", c.Callback)

	h.Get("/connect/:provider", auth, c.Connect)
	h.Get("/status", auth, c.Status)
	h.Delete("/:provider", auth, c.Disconnect)
}

func (c *calendarController) Connect(ctx *fiber.Ctx) error {
	if c.connector == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no calendar provider configured")
	}
	provider := ctx.Params("provider")
	userId := ctx.Query("user_id")
	if userId == "" {
		return assistant.ErrUserRequired
	}
	if !serverutils.CallerMatches(ctx, userId) {
		return fiber.ErrForbidden
	}

	state := uuid.NewString()
	url, err := c.connector.AuthURL(provider, state)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	c.states.SetDefault(state, userId)

	return ctx.JSON(serverutils.SuccessResponse("Authorization required", dto.CalendarConnectResponse{
		Provider:         provider,
		AuthorizationURL: url,
		Message:          "Open the authorization URL to connect your calendar.",
	}))
}

func (c *calendarController) Callback(ctx *fiber.Ctx) error {
	if c.connector == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no calendar provider configured")
	}
	provider := ctx.Params("provider")
	code := ctx.Query("code")
	state := ctx.Query("state")
	if code == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing code"))
	}

	raw, ok := c.states.Get(state)
	if !ok {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid or expired state"))
	}
	c.states.Delete(state)
	userId := raw.(string)

	if err := c.connector.Exchange(ctx.UserContext(), provider, userId, code); err != nil {
		c.logger.Error("CalendarController", "OAuth exchange failed", map[string]interface{}{
			"provider": provider,
			"user_id":  userId,
			"error":    err.Error(),
		})
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	c.logger.Info("CalendarController", "Calendar connected", map[string]interface{}{
		"provider": provider,
		"user_id":  userId,
	})
	return ctx.JSON(serverutils.SuccessResponse[any]("Calendar connected", nil))
}

func (c *calendarController) Status(ctx *fiber.Ctx) error {
	userId := ctx.Query("user_id")
	if userId == "" {
		return assistant.ErrUserRequired
	}
	if !serverutils.CallerMatches(ctx, userId) {
		return fiber.ErrForbidden
	}

	connected, err := c.tokens.Connected(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get calendar status", dto.CalendarStatusResponse{
		ConnectedCalendars: connected,
		AvailableProviders: c.providers,
	}))
}

func (c *calendarController) Disconnect(ctx *fiber.Ctx) error {
	userId := ctx.Query("user_id")
	if userId == "" {
		return assistant.ErrUserRequired
	}
	if !serverutils.CallerMatches(ctx, userId) {
		return fiber.ErrForbidden
	}

	if err := c.tokens.Disconnect(ctx.UserContext(), userId, ctx.Params("provider")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Calendar disconnected", nil))
}
