package agents

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
	"jenny-assistant-be/pkg/store"

	"github.com/google/uuid"
)

const (
	commandList     = "list"
	commandComplete = "complete"
	commandDelete   = "delete"
	commandCreate   = "create"

	openTaskLimit = 10
)

var (
	isoDate    = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	clockTime  = regexp.MustCompile(`\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	taskIDExpr = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
)

type TaskHandler struct {
	tasks  TaskStore
	logger logger.ILogger
	now    func() time.Time
}

func NewTaskHandler(tasks TaskStore, log logger.ILogger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: log, now: time.Now}
}

func (h *TaskHandler) Name() string { return assistant.TaskAgent }

func (h *TaskHandler) Handle(ctx context.Context, query string, req *agent.Request) (*agent.Result, error) {
	userID, err := requireUser(req)
	if err != nil {
		return nil, err
	}

	var pending *store.PendingTask
	if req.Session != nil {
		pending = req.Session.PendingTask
	}

	command := detectCommand(query)
	if pending != nil && command == commandCreate {
		return h.resume(ctx, userID, query, pending)
	}

	switch command {
	case commandList:
		return h.list(ctx, userID)
	case commandComplete, commandDelete:
		return h.update(ctx, userID, query, command)
	}

	due := parseDueDate(query, h.now())
	title := capitalize(strings.TrimSpace(query))
	if due == nil && req.Session != nil {
		return &agent.Result{
			Reply:   "Sure, when should I remind you?",
			Session: &agent.SessionUpdate{SetPendingTask: &store.PendingTask{Title: title, Details: query}},
		}, nil
	}

	recurrence := parseRecurrence(query)
	task, err := h.tasks.Create(ctx, userID, &dto.CreateTaskRequest{
		Title:      title,
		Details:    query,
		DueAt:      due,
		Recurrence: recurrence,
	})
	if err != nil {
		return failure(h.logger, "TaskAgent", "I couldn't save that task right now.", err, userID), nil
	}

	reply := "Task created: " + task.Title
	if task.DueAt != nil {
		reply += fmt.Sprintf(" (due %s).", task.DueAt.Format(time.RFC3339))
	} else {
		reply += "."
	}
	if recurrence != "" {
		reply += " It recurs " + recurrence + "."
	}
	return &agent.Result{Reply: reply, Data: map[string]interface{}{"task": task}}, nil
}

// resume finishes a creation that was parked waiting for a date.
func (h *TaskHandler) resume(ctx context.Context, userID, query string, pending *store.PendingTask) (*agent.Result, error) {
	due := parseDueDate(query, h.now())
	if due == nil {
		return agent.Reply("I still need a date or time to schedule that reminder."), nil
	}

	title := pending.Title
	if title == "" {
		title = "Reminder"
	}
	details := pending.Details
	if details == "" {
		details = title
	}

	task, err := h.tasks.Create(ctx, userID, &dto.CreateTaskRequest{
		Title:      title,
		Details:    fmt.Sprintf("%s (%s)", details, query),
		DueAt:      due,
		Recurrence: parseRecurrence(details + " " + query),
	})
	if err != nil {
		return failure(h.logger, "TaskAgent", "I couldn't save that task right now.", err, userID), nil
	}

	return &agent.Result{
		Reply:   fmt.Sprintf("Task created: %s (due %s).", task.Title, task.DueAt.Format(time.RFC3339)),
		Data:    map[string]interface{}{"task": task},
		Session: &agent.SessionUpdate{ClearPendingTask: true},
	}, nil
}

func (h *TaskHandler) list(ctx context.Context, userID string) (*agent.Result, error) {
	tasks, err := h.tasks.ListOpen(ctx, userID, openTaskLimit)
	if err != nil {
		return failure(h.logger, "TaskAgent", "I couldn't load your tasks right now.", err, userID), nil
	}
	if len(tasks) == 0 {
		return agent.Reply("You have no pending tasks."), nil
	}

	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("- %s (id: %s)", t.Title, t.Id))
	}
	return &agent.Result{
		Reply: "Here are your open tasks:\n" + strings.Join(lines, "\n"),
		Data:  map[string]interface{}{"tasks": tasks},
	}, nil
}

func (h *TaskHandler) update(ctx context.Context, userID, query, command string) (*agent.Result, error) {
	match := taskIDExpr.FindString(query)
	if match == "" {
		return agent.Reply("Please provide the task ID to update."), nil
	}
	id, err := uuid.Parse(match)
	if err != nil {
		return agent.Reply("Please provide the task ID to update."), nil
	}

	if command == commandComplete {
		task, err := h.tasks.Complete(ctx, userID, id)
		if err != nil {
			return failure(h.logger, "TaskAgent", "I couldn't update that task right now.", err, userID), nil
		}
		if task == nil {
			return agent.Reply("I could not find that task."), nil
		}
		return &agent.Result{
			Reply: fmt.Sprintf("Marked '%s' as completed.", task.Title),
			Data:  map[string]interface{}{"task": task},
		}, nil
	}

	deleted, err := h.tasks.Delete(ctx, userID, id)
	if err != nil {
		return failure(h.logger, "TaskAgent", "I couldn't update that task right now.", err, userID), nil
	}
	if !deleted {
		return agent.Reply("I could not find that task."), nil
	}
	return agent.Reply("Removed the task."), nil
}

func detectCommand(text string) string {
	lowered := strings.ToLower(text)
	switch {
	case containsAny(lowered, []string{"list", "show", "what are my tasks"}):
		return commandList
	case containsAny(lowered, []string{"complete", "done", "finished"}):
		return commandComplete
	case containsAny(lowered, []string{"delete", "remove"}):
		return commandDelete
	default:
		return commandCreate
	}
}

// parseDueDate understands tomorrow, today/tonight, next week and YYYY-MM-DD,
// refined by an "at 9am" style clock time. Times are UTC.
func parseDueDate(text string, now time.Time) *time.Time {
	lowered := strings.ToLower(text)
	now = now.UTC()

	var due time.Time
	switch {
	case strings.Contains(lowered, "tomorrow"):
		due = now.AddDate(0, 0, 1)
	case strings.Contains(lowered, "today"), strings.Contains(lowered, "tonight"):
		due = now
	case strings.Contains(lowered, "next week"):
		due = now.AddDate(0, 0, 7)
	default:
		m := isoDate.FindStringSubmatch(lowered)
		if m == nil {
			return nil
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		due = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes 2024-02-31; reject it instead
		if due.Year() != year || int(due.Month()) != month || due.Day() != day {
			return nil
		}
	}

	if hour, minute, ok := parseClock(lowered); ok {
		due = time.Date(due.Year(), due.Month(), due.Day(), hour, minute, 0, 0, time.UTC)
	}
	return &due
}

func parseClock(lowered string) (int, int, bool) {
	m := clockTime.FindStringSubmatch(lowered)
	if m == nil {
		return 0, 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch m[3] {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func parseRecurrence(text string) string {
	lowered := strings.ToLower(text)
	switch {
	case strings.Contains(lowered, "every day"), strings.Contains(lowered, "daily"):
		return "daily"
	case strings.Contains(lowered, "every week"), strings.Contains(lowered, "weekly"):
		return "weekly"
	case strings.Contains(lowered, "every month"), strings.Contains(lowered, "monthly"):
		return "monthly"
	default:
		return ""
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
