// Package agents holds the capability handlers the dispatcher routes to. Each
// one wraps a single collaborator and turns its failures into a readable reply.
package agents

import (
	"context"
	"strings"
	"time"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
	"jenny-assistant-be/pkg/calendar"
	"jenny-assistant-be/pkg/llm"
	"jenny-assistant-be/pkg/mem0"

	"github.com/google/uuid"
)

type MemoryClient interface {
	Add(ctx context.Context, text, userID string) (map[string]interface{}, error)
	Search(ctx context.Context, query, userID string, limit int) (*mem0.SearchResult, error)
	Forget(ctx context.Context, topic, userID string) error
	GetUserContext(ctx context.Context, userID string, limit int) []mem0.Memory
}

type TaskStore interface {
	Create(ctx context.Context, userId string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	ListOpen(ctx context.Context, userId string, limit int) ([]*dto.TaskResponse, error)
	Complete(ctx context.Context, userId string, id uuid.UUID) (*dto.TaskResponse, error)
	Delete(ctx context.Context, userId string, id uuid.UUID) (bool, error)
}

type ProfileStore interface {
	SavePreference(ctx context.Context, userId, label, value string) error
	Preferences(ctx context.Context, userId string, limit int) ([]*entity.ProfilePreference, error)
}

type CalendarService interface {
	ListEvents(ctx context.Context, userID string, start, end time.Time, max int) ([]calendar.Event, error)
	CreateEvent(ctx context.Context, userID string, ev calendar.NewEvent) (*calendar.Event, error)
	SearchEvents(ctx context.Context, userID, query string, start, end time.Time, max int) ([]calendar.Event, error)
	Sync(ctx context.Context, userID string) map[string]calendar.SyncStatus
}

// Deps bundles the collaborators of the default handler set. Calendar may be
// nil when no provider is configured.
type Deps struct {
	Memory       MemoryClient
	Tasks        TaskStore
	Profiles     ProfileStore
	Calendar     CalendarService
	LLM          llm.LLMProvider
	ModelName    string
	Capabilities func() []string
	Logger       logger.ILogger
}

// Default builds one handler per capability.
func Default(d Deps) []agent.Handler {
	if d.Logger == nil {
		d.Logger = logger.NewNopLogger()
	}
	if d.LLM == nil {
		d.LLM = llm.OfflineProvider{}
	}

	knowledge := NewKnowledgeHandler(d.LLM, d.Memory, d.ModelName, d.Logger)
	research := NewResearchHandler(d.LLM, d.Logger)

	return []agent.Handler{
		NewMemoryHandler(d.Memory, d.Logger),
		NewTaskHandler(d.Tasks, d.Logger),
		NewProfileHandler(d.Profiles, d.Memory, d.Logger),
		knowledge,
		NewRecallHandler(d.Memory, d.Tasks, d.LLM, d.Logger),
		NewCalendarHandler(d.Calendar, d.Logger),
		NewMailHandler(),
		research,
		NewToolsHandler(d.Capabilities, research),
		NewGeneralHandler(d.Memory, knowledge, d.Logger),
	}
}

func requireUser(req *agent.Request) (string, error) {
	if req == nil || strings.TrimSpace(req.UserID) == "" {
		return "", assistant.ErrUserRequired
	}
	return req.UserID, nil
}

// failure is the reply for a collaborator that could not serve the request.
func failure(log logger.ILogger, module, reply string, err error, userID string) *agent.Result {
	log.Warn(module, reply, map[string]interface{}{
		"user_id": userID,
		"error":   err.Error(),
	})
	return &agent.Result{Reply: reply, Error: err.Error()}
}

func memoryLines(items []mem0.Memory) []string {
	lines := make([]string, 0, len(items))
	for _, m := range items {
		if c := strings.TrimSpace(m.Content()); c != "" {
			lines = append(lines, c)
		}
	}
	return lines
}
