package serverutils

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"jenny-assistant-be/pkg/assistant"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	UserId string `validate:"required"`
	Link   string `validate:"omitempty,url"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{UserId: "u1"}))

	err := ValidateRequest(sampleRequest{Link: "not a url"})
	require.Error(t, err)
	assert.ErrorIs(t, err, assistant.ErrValidation)
	assert.Contains(t, err.Error(), "userid is required")
	assert.Contains(t, err.Error(), "link must be a valid url")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 400, StatusFor(assistant.ErrUserRequired))
	assert.Equal(t, 404, StatusFor(fiber.ErrNotFound))
	assert.Equal(t, 500, StatusFor(errors.New("boom")))
	assert.Equal(t, 400, StatusFor(fmt.Errorf("wrapped: %w", assistant.ErrEmptyMessage)))
}

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(JwtMiddleware("s3cret"))
	app.Get("/me", func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals("user_id").(string))
	})

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	token := signedToken(t, "s3cret", jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	wrong := signedToken(t, "other", jwt.MapClaims{"user_id": "u1"})
	req = httptest.NewRequest("GET", "/me?token="+wrong, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestJwtMiddlewareDisabled(t *testing.T) {
	app := fiber.New()
	app.Use(JwtMiddleware(""))
	app.Get("/open", func(ctx *fiber.Ctx) error {
		assert.True(t, CallerMatches(ctx, "anyone"))
		return ctx.SendStatus(204)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(nil))
	app.Get("/bad", func(*fiber.Ctx) error { return assistant.ErrEmptyMessage })
	app.Get("/boom", func(*fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/bad", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}
