package agents

import (
	"context"
	"time"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/pkg/calendar"
	"jenny-assistant-be/pkg/llm"
	"jenny-assistant-be/pkg/mem0"

	"github.com/google/uuid"
)

type fakeMemory struct {
	added    []string
	forgot   []string
	results  []mem0.Memory
	context  []mem0.Memory
	queries  []string
	addErr   error
	searchEr error
}

func (f *fakeMemory) Add(_ context.Context, text, _ string) (map[string]interface{}, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, text)
	return map[string]interface{}{"status": "ok"}, nil
}

func (f *fakeMemory) Search(_ context.Context, query, _ string, _ int) (*mem0.SearchResult, error) {
	f.queries = append(f.queries, query)
	if f.searchEr != nil {
		return nil, f.searchEr
	}
	return &mem0.SearchResult{Results: f.results}, nil
}

func (f *fakeMemory) Forget(_ context.Context, topic, _ string) error {
	f.forgot = append(f.forgot, topic)
	return nil
}

func (f *fakeMemory) GetUserContext(context.Context, string, int) []mem0.Memory {
	return f.context
}

type fakeTasks struct {
	created []*dto.CreateTaskRequest
	open    []*dto.TaskResponse
	known   map[uuid.UUID]string
	err     error
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{known: map[uuid.UUID]string{}}
}

func (f *fakeTasks) Create(_ context.Context, _ string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &dto.TaskResponse{
		Id:         uuid.New(),
		Title:      req.Title,
		Details:    req.Details,
		DueAt:      req.DueAt,
		Recurrence: req.Recurrence,
		Status:     entity.TaskStatusPending,
	}, nil
}

func (f *fakeTasks) ListOpen(context.Context, string, int) ([]*dto.TaskResponse, error) {
	return f.open, f.err
}

func (f *fakeTasks) Complete(_ context.Context, _ string, id uuid.UUID) (*dto.TaskResponse, error) {
	title, ok := f.known[id]
	if !ok {
		return nil, nil
	}
	return &dto.TaskResponse{Id: id, Title: title, Status: entity.TaskStatusCompleted}, nil
}

func (f *fakeTasks) Delete(_ context.Context, _ string, id uuid.UUID) (bool, error) {
	_, ok := f.known[id]
	delete(f.known, id)
	return ok, nil
}

type fakeProfiles struct {
	saved map[string]string
	prefs []*entity.ProfilePreference
}

func (f *fakeProfiles) SavePreference(_ context.Context, _, label, value string) error {
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[label] = value
	return nil
}

func (f *fakeProfiles) Preferences(context.Context, string, int) ([]*entity.ProfilePreference, error) {
	return f.prefs, nil
}

type fakeLLM struct {
	answer  string
	err     error
	prompts []string
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	for _, m := range history {
		f.prompts = append(f.prompts, m.Content)
	}
	return f.answer, f.err
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

type fakeCalendar struct {
	events  []calendar.Event
	created []calendar.NewEvent
	status  map[string]calendar.SyncStatus
	err     error
}

func (f *fakeCalendar) ListEvents(context.Context, string, time.Time, time.Time, int) ([]calendar.Event, error) {
	return f.events, f.err
}

func (f *fakeCalendar) CreateEvent(_ context.Context, _ string, ev calendar.NewEvent) (*calendar.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, ev)
	return &calendar.Event{ID: "e1", Title: ev.Title, Start: ev.Start, Provider: calendar.ProviderGoogle}, nil
}

func (f *fakeCalendar) SearchEvents(context.Context, string, string, time.Time, time.Time, int) ([]calendar.Event, error) {
	return f.events, f.err
}

func (f *fakeCalendar) Sync(context.Context, string) map[string]calendar.SyncStatus {
	return f.status
}
