package controller

import (
	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	memoryOnly func() bool
	handlers   func() []string
}

func NewHealthController(memoryOnly func() bool, handlers func() []string) IHealthController {
	return &healthController{memoryOnly: memoryOnly, handlers: handlers}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"status":       "ok",
		"session_mode": sessionMode(c.memoryOnly()),
		"capabilities": c.handlers(),
	})
}

func sessionMode(memoryOnly bool) string {
	if memoryOnly {
		return "memory"
	}
	return "redis"
}
