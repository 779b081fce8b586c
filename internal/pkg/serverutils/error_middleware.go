package serverutils

import (
	"errors"

	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by route handlers into the
// standard error envelope. Validation failures are the caller's fault; any
// other unrecognised error is a server fault.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.Is(err, assistant.ErrValidation):
		return fiber.StatusBadRequest
	case errors.As(err, &fe):
		return fe.Code
	default:
		return fiber.StatusInternalServerError
	}
}
