package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/internal/pkg/serverutils"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConversation struct {
	last    *assistant.IncomingMessage
	cleared []string
}

func (f *fakeConversation) HandleMessage(_ context.Context, msg *assistant.IncomingMessage) (*dto.AskResponse, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	f.last = msg
	return &dto.AskResponse{Agent: assistant.MemoryAgent, Reply: "Saved the memory."}, nil
}

func (f *fakeConversation) GetSession(_ context.Context, userId string) (*dto.SessionResponse, error) {
	return &dto.SessionResponse{UserId: userId, LastIntent: assistant.MemoryAgent, MemoryOnly: true}, nil
}

func (f *fakeConversation) ClearSession(_ context.Context, userId string) error {
	f.cleared = append(f.cleared, userId)
	return nil
}

type fakeReminders struct {
	jobs      []scheduler.Job
	cancelled []string
}

func (f *fakeReminders) Start(context.Context) error { return nil }
func (f *fakeReminders) Stop()                       {}

func (f *fakeReminders) List(userId string) []scheduler.Job {
	var out []scheduler.Job
	for _, j := range f.jobs {
		if j.UserID == userId {
			out = append(out, j)
		}
	}
	return out
}

func (f *fakeReminders) Cancel(id string) error {
	f.cancelled = append(f.cancelled, id)
	return nil
}

func newAssistantApp(secret string) (*fiber.App, *fakeConversation, *fakeReminders) {
	conv := &fakeConversation{}
	rem := &fakeReminders{jobs: []scheduler.Job{{ID: "reminder_u1_abcd1234", UserID: "u1", Message: "Reminder: Call mom", RunAt: time.Now().Add(time.Hour)}}}

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	NewAssistantController(conv, rem).RegisterRoutes(app.Group("/api"), serverutils.JwtMiddleware(secret))
	return app, conv, rem
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestAskReturnsCanonicalShape(t *testing.T) {
	app, conv, _ := newAssistantApp("")

	code, body := doJSON(t, app, "POST", "/api/assistant/v1/ask", `{"user_id":"u1","text":"Remember that I like hiking"}`, nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, assistant.MemoryAgent, body["agent"])
	assert.Equal(t, "Saved the memory.", body["reply"])
	assert.Equal(t, "Remember that I like hiking", conv.last.Text)
}

func TestAskValidation(t *testing.T) {
	app, _, _ := newAssistantApp("")

	code, _ := doJSON(t, app, "POST", "/api/assistant/v1/ask", `{"text":"hello"}`, nil)
	assert.Equal(t, 400, code)

	code, _ = doJSON(t, app, "POST", "/api/assistant/v1/ask", `{"user_id":"u1"}`, nil)
	assert.Equal(t, 400, code)

	code, _ = doJSON(t, app, "POST", "/api/assistant/v1/ask", `{"user_id":"u1","voice_url":"not a url"}`, nil)
	assert.Equal(t, 400, code)
}

func TestAskRejectsOtherUsersToken(t *testing.T) {
	app, _, _ := newAssistantApp("s3cret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u2"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	code, _ := doJSON(t, app, "POST", "/api/assistant/v1/ask", `{"user_id":"u1","text":"hi"}`, map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, 403, code)

	code, _ = doJSON(t, app, "POST", "/api/assistant/v1/ask", `{"user_id":"u1","text":"hi"}`, nil)
	assert.Equal(t, 401, code)
}

func TestSessionRoutes(t *testing.T) {
	app, conv, _ := newAssistantApp("")

	code, body := doJSON(t, app, "GET", "/api/assistant/v1/session/u1", "", nil)
	assert.Equal(t, 200, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "u1", data["user_id"])
	assert.Equal(t, true, data["memory_only"])

	code, _ = doJSON(t, app, "DELETE", "/api/assistant/v1/session/u1", "", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, []string{"u1"}, conv.cleared)
}

func TestReminderRoutes(t *testing.T) {
	app, _, rem := newAssistantApp("")

	code, body := doJSON(t, app, "GET", "/api/assistant/v1/reminders/u1", "", nil)
	assert.Equal(t, 200, code)
	assert.Len(t, body["data"], 1)

	code, _ = doJSON(t, app, "DELETE", "/api/assistant/v1/reminders/u2/reminder_u1_abcd1234", "", nil)
	assert.Equal(t, 404, code)
	assert.Empty(t, rem.cancelled)

	code, _ = doJSON(t, app, "DELETE", "/api/assistant/v1/reminders/u1/reminder_u1_abcd1234", "", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, []string{"reminder_u1_abcd1234"}, rem.cancelled)
}

type fakeMemoryService struct {
	forgotten []string
}

func (f *fakeMemoryService) Forget(_ context.Context, userId string) error {
	f.forgotten = append(f.forgotten, userId)
	return nil
}

func (*fakeMemoryService) Remember(_ context.Context, req *dto.RememberRequest) (map[string]interface{}, error) {
	return map[string]interface{}{"status": "ok", "text": req.Text}, nil
}

func (*fakeMemoryService) Search(_ context.Context, _, query string, _ int) ([]dto.MemoryItemResponse, error) {
	return []dto.MemoryItemResponse{{Content: "likes " + query}}, nil
}

func TestMemoryRoutes(t *testing.T) {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(nil))
	mem := &fakeMemoryService{}
	NewMemoryController(mem).RegisterRoutes(app.Group("/api"), serverutils.JwtMiddleware(""))

	code, _ := doJSON(t, app, "POST", "/api/memory/v1/remember", `{"user_id":"u1","text":"I like tea"}`, nil)
	assert.Equal(t, 200, code)

	code, _ = doJSON(t, app, "POST", "/api/memory/v1/remember", `{"user_id":"u1"}`, nil)
	assert.Equal(t, 400, code)

	code, body := doJSON(t, app, "GET", "/api/memory/v1/search?user_id=u1&q=tea", "", nil)
	assert.Equal(t, 200, code)
	items := body["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "likes tea", items[0].(map[string]interface{})["content"])

	code, _ = doJSON(t, app, "GET", "/api/memory/v1/search?q=tea", "", nil)
	assert.Equal(t, 400, code)

	code, _ = doJSON(t, app, "DELETE", "/api/memory/v1/u1", "", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, []string{"u1"}, mem.forgotten)
}

type fakeConnector struct {
	exchanged []string
}

func (f *fakeConnector) AuthURL(provider, state string) (string, error) {
	return "https://accounts.example.com/auth?provider=" + provider + "&state=" + state, nil
}

func (f *fakeConnector) Exchange(_ context.Context, provider, userID, code string) error {
	f.exchanged = append(f.exchanged, provider+"/"+userID+"/"+code)
	return nil
}

func TestCalendarConnectAndCallback(t *testing.T) {
	conn := &fakeConnector{}
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(nil))
	NewCalendarController(conn, nil, []string{"google"}, logger.NewNopLogger()).RegisterRoutes(app.Group("/api"), serverutils.JwtMiddleware(""))

	code, body := doJSON(t, app, "GET", "/api/calendar/v1/connect/google?user_id=u1", "", nil)
	require.Equal(t, 200, code)
	authURL := body["data"].(map[string]interface{})["authorization_url"].(string)
	state := authURL[strings.Index(authURL, "state=")+len("state="):]

	code, _ = doJSON(t, app, "GET", "/api/calendar/v1/callback/google?code=abc&state=bogus", "", nil)
	assert.Equal(t, 400, code)

	code, _ = doJSON(t, app, "GET", "/api/calendar/v1/callback/google?code=abc&state="+state, "", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, []string{"google/u1/abc"}, conn.exchanged)

	// states are single use
	code, _ = doJSON(t, app, "GET", "/api/calendar/v1/callback/google?code=abc&state="+state, "", nil)
	assert.Equal(t, 400, code)
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	NewHealthController(func() bool { return true }, func() []string { return []string{assistant.GeneralAgent} }).RegisterRoutes(app.Group("/api"))

	code, body := doJSON(t, app, "GET", "/api/health", "", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["session_mode"])
}
