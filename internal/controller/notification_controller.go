package controller

import (
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/internal/pkg/serverutils"
	internalWS "jenny-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type INotificationController interface {
	RegisterRoutes(r fiber.Router)
	ServeWs(ctx *fiber.Ctx) error
}

type notificationController struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewNotificationController(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) INotificationController {
	return &notificationController{hub: hub, jwtSecret: jwtSecret, logger: log}
}

func (c *notificationController) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", c.ServeWs)
}

// ServeWs streams reminder notifications. With authentication enabled the
// user comes from the token (query "token" or bearer header), otherwise from
// the user_id query parameter.
func (c *notificationController) ServeWs(ctx *fiber.Ctx) error {
	userId := ctx.Query("user_id")
	if c.jwtSecret != "" {
		tokenStr := serverutils.BearerToken(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Missing token (Query 'token' or Header 'Authorization')"))
		}
		id, err := serverutils.ParseUserID(tokenStr, c.jwtSecret)
		if err != nil {
			c.logger.Warn("NotificationController", "Invalid token in websocket handshake", map[string]interface{}{"error": err.Error()})
			return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token"))
		}
		userId = id
	}
	if userId == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "user_id is required"))
	}

	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		c.logger.Info("NotificationController", "Starting WebSocket session", map[string]interface{}{"user_id": userId})
		internalWS.ServeWs(c.hub, conn, userId)
		c.logger.Info("NotificationController", "WebSocket session ended", map[string]interface{}{"user_id": userId})
	})(ctx)
}
