package agents

import (
	"context"
	"errors"
	"testing"
	"time"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
	"jenny-assistant-be/pkg/calendar"
	"jenny-assistant-be/pkg/mem0"
	"jenny-assistant-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nop = logger.NewNopLogger()

func request(snap *store.Snapshot) *agent.Request {
	if snap == nil {
		snap = store.NewSnapshot(time.Now())
	}
	return &agent.Request{UserID: "u1", Session: snap}
}

func TestHandlersRequireUser(t *testing.T) {
	handlers := Default(Deps{
		Memory:   &fakeMemory{},
		Tasks:    newFakeTasks(),
		Profiles: &fakeProfiles{},
		LLM:      &fakeLLM{answer: "x"},
	})
	require.Len(t, handlers, 10)

	for _, h := range handlers {
		_, err := h.Handle(context.Background(), "hello", &agent.Request{})
		assert.ErrorIs(t, err, assistant.ErrUserRequired, h.Name())
	}
}

func TestMemoryHandler(t *testing.T) {
	ctx := context.Background()
	mem := &fakeMemory{}
	h := NewMemoryHandler(mem, nop)

	res, err := h.Handle(ctx, "Remember that I like hiking", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Updated your preference.", res.Ack)

	res, err = h.Handle(ctx, "Remember my locker is 42", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Saved the memory.", res.Ack)
	assert.Len(t, mem.added, 2)

	res, err = h.Handle(ctx, "Forget about my old address", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "I've marked 'my old address' as outdated.", res.Ack)
	assert.Equal(t, []string{"my old address"}, mem.forgot)
}

func TestMemoryHandlerSearch(t *testing.T) {
	mem := &fakeMemory{results: []mem0.Memory{{Text: "likes hiking"}, {Memory: "drinks tea"}}}
	h := NewMemoryHandler(mem, nop)

	res, err := h.Handle(context.Background(), "search:: hobbies", request(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"hobbies"}, mem.queries)
	assert.Equal(t, "Here's what I remember:\n- likes hiking\n- drinks tea", res.Reply)
}

func TestMemoryHandlerFailureIsAReply(t *testing.T) {
	h := NewMemoryHandler(&fakeMemory{addErr: errors.New("connection refused")}, nop)

	res, err := h.Handle(context.Background(), "save this", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "I couldn't save that right now.", res.Reply)
	assert.Equal(t, "connection refused", res.Error)
}

func TestTaskHandlerPendingHandshake(t *testing.T) {
	ctx := context.Background()
	tasks := newFakeTasks()
	h := NewTaskHandler(tasks, nop)
	now := time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	snap := store.NewSnapshot(now)
	res, err := h.Handle(ctx, "Remind me to call mom", request(snap))
	require.NoError(t, err)
	assert.Equal(t, "Sure, when should I remind you?", res.Reply)
	require.NotNil(t, res.Session)
	require.NotNil(t, res.Session.SetPendingTask)
	assert.Equal(t, "Remind me to call mom", res.Session.SetPendingTask.Title)
	assert.Empty(t, tasks.created)

	snap.PendingTask = res.Session.SetPendingTask
	res, err = h.Handle(ctx, "sometime", request(snap))
	require.NoError(t, err)
	assert.Equal(t, "I still need a date or time to schedule that reminder.", res.Reply)
	assert.Nil(t, res.Session)

	res, err = h.Handle(ctx, "tomorrow at 9am", request(snap))
	require.NoError(t, err)
	assert.Equal(t, "Task created: Remind me to call mom (due 2024-05-02T09:00:00Z).", res.Reply)
	require.NotNil(t, res.Session)
	assert.True(t, res.Session.ClearPendingTask)

	require.Len(t, tasks.created, 1)
	assert.Equal(t, "Remind me to call mom (tomorrow at 9am)", tasks.created[0].Details)
}

func TestTaskHandlerCreateWithDate(t *testing.T) {
	tasks := newFakeTasks()
	h := NewTaskHandler(tasks, nop)
	h.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }

	res, err := h.Handle(context.Background(), "water the plants every day starting 2024-06-01 at 7:30am", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Task created: Water the plants every day starting 2024-06-01 at 7:30am (due 2024-06-01T07:30:00Z). It recurs daily.", res.Reply)
	assert.Equal(t, "daily", tasks.created[0].Recurrence)
}

func TestTaskHandlerListAndUpdate(t *testing.T) {
	ctx := context.Background()
	tasks := newFakeTasks()
	h := NewTaskHandler(tasks, nop)

	res, err := h.Handle(ctx, "list my tasks", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "You have no pending tasks.", res.Reply)

	id := uuid.MustParse("6f1d6a4e-95b5-4a44-9a0d-0e9e1f0b6f3a")
	tasks.open = []*dto.TaskResponse{{Id: id, Title: "Call mom", Status: entity.TaskStatusPending}}
	res, err = h.Handle(ctx, "show my tasks", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Here are your open tasks:\n- Call mom (id: 6f1d6a4e-95b5-4a44-9a0d-0e9e1f0b6f3a)", res.Reply)

	res, err = h.Handle(ctx, "complete the task", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Please provide the task ID to update.", res.Reply)

	res, err = h.Handle(ctx, "complete 6F1D6A4E-95B5-4A44-9A0D-0E9E1F0B6F3A", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "I could not find that task.", res.Reply)

	tasks.known[id] = "Call mom"
	res, err = h.Handle(ctx, "done with "+id.String(), request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Marked 'Call mom' as completed.", res.Reply)

	res, err = h.Handle(ctx, "delete task "+id.String(), request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Removed the task.", res.Reply)

	res, err = h.Handle(ctx, "delete task "+id.String(), request(nil))
	require.NoError(t, err)
	assert.Equal(t, "I could not find that task.", res.Reply)
}

func TestParseDueDate(t *testing.T) {
	now := time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		input    string
		expected *time.Time
	}{
		{"tomorrow", ptr(now.AddDate(0, 0, 1))},
		{"tonight at 8pm", ptr(time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC))},
		{"next week at 12am", ptr(time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC))},
		{"on 2024-12-24", ptr(time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC))},
		{"on 2024-02-31", nil},
		{"someday", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseDueDate(tt.input, now)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got), "got %s", got)
		})
	}
}

func TestProfileHandler(t *testing.T) {
	ctx := context.Background()
	profiles := &fakeProfiles{}
	mem := &fakeMemory{}
	h := NewProfileHandler(profiles, mem, nop)

	res, err := h.Handle(ctx, "Update my profile: my favorite drink is oat latte", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Updated your drink preference.", res.Reply)
	assert.Len(t, mem.added, 1)

	res, err = h.Handle(ctx, "set my profile email to jenny.user@example.com", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Updated your email preference.", res.Reply)
	assert.Equal(t, "jenny.user@example.com", profiles.saved[LabelEmail])

	res, err = h.Handle(ctx, "show profile", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "I don't have profile info yet. Tell me something about yourself!", res.Reply)

	mem.context = []mem0.Memory{{Text: "likes hiking"}}
	res, err = h.Handle(ctx, "show profile", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Here's what I remember: likes hiking", res.Reply)

	profiles.prefs = []*entity.ProfilePreference{{Label: "diet", Value: "vegetarian"}}
	res, err = h.Handle(ctx, "show profile", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Your profile: Diet: vegetarian", res.Reply)
}

func TestKnowledgeHandlerSavesWhenAsked(t *testing.T) {
	mem := &fakeMemory{}
	model := &fakeLLM{answer: "  Green tea has antioxidants.  "}
	h := NewKnowledgeHandler(model, mem, "gemini-2.5-flash", nop)

	res, err := h.Handle(context.Background(), "benefits of green tea, remember it", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Green tea has antioxidants.", res.Reply)
	assert.Equal(t, "gemini-2.5-flash", res.Data["source"])
	assert.Equal(t, []string{"Green tea has antioxidants."}, mem.added)
	assert.Contains(t, model.prompts[0], "Question: benefits of green tea")
}

func TestRecallHandlerBuildsContext(t *testing.T) {
	mem := &fakeMemory{results: []mem0.Memory{{Text: "likes hiking"}}}
	tasks := newFakeTasks()
	tasks.open = []*dto.TaskResponse{{Title: "Call mom", Status: entity.TaskStatusPending}}
	model := &fakeLLM{answer: "You like hiking."}
	h := NewRecallHandler(mem, tasks, model, nop)

	res, err := h.Handle(context.Background(), "what do i like?", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "You like hiking.", res.Reply)
	require.Len(t, model.prompts, 2)
	assert.Contains(t, model.prompts[1], "Memories:\n- likes hiking")
	assert.Contains(t, model.prompts[1], "- Call mom (status: pending)")
}

func TestCalendarHandler(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cal := &fakeCalendar{}
	h := NewCalendarHandler(cal, nop)
	h.now = func() time.Time { return now }

	res, err := h.Handle(ctx, "what's on my calendar tomorrow", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "You have no events scheduled for tomorrow.", res.Reply)

	cal.events = []calendar.Event{{Title: "Standup", Start: now.Add(time.Hour), Provider: calendar.ProviderGoogle}}
	res, err = h.Handle(ctx, "show my calendar", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Your events for today:\n- Standup at 11:00 AM (google)", res.Reply)

	res, err = h.Handle(ctx, "schedule a meeting tomorrow at 2pm on my calendar", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "I've created an event 'meeting' for 02:00 PM on May 02.", res.Reply)
	require.Len(t, cal.created, 1)

	cal.status = map[string]calendar.SyncStatus{
		calendar.ProviderGoogle:    {Connected: true},
		calendar.ProviderMicrosoft: {},
	}
	res, err = h.Handle(ctx, "sync my calendar", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Calendars synced! Connected: google", res.Reply)
}

func TestCalendarHandlerWithoutProviders(t *testing.T) {
	h := NewCalendarHandler(nil, nop)

	res, err := h.Handle(context.Background(), "what's on my calendar", request(nil))
	require.NoError(t, err)
	assert.Equal(t, calendarNotConnected, res.Reply)
}

func TestGeneralHandler(t *testing.T) {
	ctx := context.Background()
	mem := &fakeMemory{}
	model := &fakeLLM{answer: "Paris."}
	h := NewGeneralHandler(mem, NewKnowledgeHandler(model, mem, "", nop), nop)

	res, err := h.Handle(ctx, "capital of france?", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Paris.", res.Message)

	mem.results = []mem0.Memory{{Text: "you visited Paris in 2019"}}
	res, err = h.Handle(ctx, "where did I travel?", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Here's what I remember that might help:\n- you visited Paris in 2019", res.Message)
}

func TestToolsHandlerListsCapabilities(t *testing.T) {
	h := NewToolsHandler(func() []string { return []string{assistant.TaskAgent, assistant.MemoryAgent} }, nil)

	res, err := h.Handle(context.Background(), "what tools do you have", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Available tools:\n- memory_agent: remember, search and forget facts about you\n- task_agent: create, list, complete and delete reminders", res.Reply)
}

func TestMailHandler(t *testing.T) {
	res, err := NewMailHandler().Handle(context.Background(), "check my inbox", request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Mail integration is not connected yet.", res.Reply)
}

func ptr(t time.Time) *time.Time { return &t }
