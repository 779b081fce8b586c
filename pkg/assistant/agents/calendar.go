package agents

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
	"jenny-assistant-be/pkg/calendar"
)

const (
	calendarHelp = "I can help you with your calendar. Try asking:\n" +
		"- 'What's on my calendar today?'\n" +
		"- 'Schedule a meeting tomorrow at 2pm'\n" +
		"- 'Find events about project'"
	calendarNotConnected = "No calendars are currently connected. Please connect your calendars first."
)

var (
	meridiemTime  = regexp.MustCompile(`(\d{1,2})\s*(am|pm)`)
	inHours       = regexp.MustCompile(`in\s+(\d+)\s+hour`)
	inMinutes     = regexp.MustCompile(`in\s+(\d+)\s+minute`)
	eventTitle    = regexp.MustCompile(`(?:create|add|schedule|book)\s+(?:an?\s+)?(?:event\s+)?(?:for\s+)?(.+?)\s+(?:at|on|tomorrow|today|in)\b`)
	eventLocation = regexp.MustCompile(`\b(?:at|in)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)
	eventSearch   = regexp.MustCompile(`(?:find|search)\s+(?:for\s+)?(.+)`)
)

type CalendarHandler struct {
	calendar CalendarService
	logger   logger.ILogger
	now      func() time.Time
}

func NewCalendarHandler(cal CalendarService, log logger.ILogger) *CalendarHandler {
	return &CalendarHandler{calendar: cal, logger: log, now: time.Now}
}

func (h *CalendarHandler) Name() string { return assistant.CalendarAgent }

func (h *CalendarHandler) Handle(ctx context.Context, query string, req *agent.Request) (*agent.Result, error) {
	userID, err := requireUser(req)
	if err != nil {
		return nil, err
	}
	if h.calendar == nil {
		return agent.Reply(calendarNotConnected), nil
	}
	lowered := strings.ToLower(query)

	switch {
	case containsAny(lowered, []string{"what's", "whats", "what is", "show", "list", "upcoming"}):
		return h.list(ctx, userID, lowered)
	case containsAny(lowered, []string{"create", "add", "schedule", "book", "set up"}):
		return h.create(ctx, userID, query)
	case containsAny(lowered, []string{"find", "search"}):
		return h.search(ctx, userID, lowered)
	case strings.Contains(lowered, "sync"):
		return h.sync(ctx, userID)
	default:
		return agent.Reply(calendarHelp), nil
	}
}

func (h *CalendarHandler) list(ctx context.Context, userID, lowered string) (*agent.Result, error) {
	now := h.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	start, end, label := now, now.Add(24*time.Hour), "today"
	switch {
	case strings.Contains(lowered, "tomorrow"):
		start = midnight.AddDate(0, 0, 1)
		end, label = start.AddDate(0, 0, 1), "tomorrow"
	case strings.Contains(lowered, "today"):
		start = midnight
		end = start.AddDate(0, 0, 1)
	case strings.Contains(lowered, "week"):
		end, label = now.AddDate(0, 0, 7), "this week"
	}

	events, err := h.calendar.ListEvents(ctx, userID, start, end, 10)
	if err != nil {
		return failure(h.logger, "CalendarAgent", "I had trouble accessing your calendar. Please make sure it's connected.", err, userID), nil
	}
	if len(events) == 0 {
		return agent.Reply(fmt.Sprintf("You have no events scheduled for %s.", label)), nil
	}

	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, fmt.Sprintf("- %s at %s (%s)", ev.Title, ev.Start.In(now.Location()).Format("03:04 PM"), ev.Provider))
	}
	return &agent.Result{
		Reply: fmt.Sprintf("Your events for %s:\n%s", label, strings.Join(lines, "\n")),
		Data:  map[string]interface{}{"events": events},
	}, nil
}

func (h *CalendarHandler) create(ctx context.Context, userID, query string) (*agent.Result, error) {
	lowered := strings.ToLower(query)
	title := "New Event"
	if m := eventTitle.FindStringSubmatch(lowered); m != nil {
		title = strings.TrimSpace(m[1])
	}
	start := parseEventTime(lowered, h.now())

	ev := calendar.NewEvent{
		Title:       title,
		Description: "Created by Jenny from: " + query,
		Start:       start,
		End:         start.Add(time.Hour),
	}
	if m := eventLocation.FindStringSubmatch(query); m != nil {
		ev.Location = m[1]
	}

	created, err := h.calendar.CreateEvent(ctx, userID, ev)
	if err != nil {
		return failure(h.logger, "CalendarAgent", "I couldn't create the event. Please make sure your calendar is connected.", err, userID), nil
	}
	return &agent.Result{
		Reply: fmt.Sprintf("I've created an event '%s' for %s.", title, start.Format("03:04 PM on January 02")),
		Data:  map[string]interface{}{"event": created},
	}, nil
}

func (h *CalendarHandler) search(ctx context.Context, userID, lowered string) (*agent.Result, error) {
	m := eventSearch.FindStringSubmatch(lowered)
	if m == nil {
		return agent.Reply(calendarHelp), nil
	}
	term := strings.TrimSpace(m[1])

	events, err := h.calendar.SearchEvents(ctx, userID, term, time.Time{}, time.Time{}, 5)
	if err != nil {
		return failure(h.logger, "CalendarAgent", "I had trouble accessing your calendar. Please make sure it's connected.", err, userID), nil
	}
	if len(events) == 0 {
		return agent.Reply(fmt.Sprintf("I couldn't find any events matching '%s'.", term)), nil
	}

	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, fmt.Sprintf("- %s at %s", ev.Title, ev.Start.Format(time.RFC3339)))
	}
	return &agent.Result{
		Reply: "Found these events:\n" + strings.Join(lines, "\n"),
		Data:  map[string]interface{}{"events": events},
	}, nil
}

func (h *CalendarHandler) sync(ctx context.Context, userID string) (*agent.Result, error) {
	status := h.calendar.Sync(ctx, userID)

	var connected []string
	for name, s := range status {
		if s.Connected {
			connected = append(connected, name)
		}
	}
	if len(connected) == 0 {
		return &agent.Result{Reply: calendarNotConnected, Data: map[string]interface{}{"status": status}}, nil
	}
	sort.Strings(connected)
	return &agent.Result{
		Reply: "Calendars synced! Connected: " + strings.Join(connected, ", "),
		Data:  map[string]interface{}{"status": status},
	}, nil
}

// parseEventTime reads "tomorrow at 3pm", "today 10am", "in 2 hours" and
// "in 30 minutes". Anything else lands one hour from now.
func parseEventTime(lowered string, now time.Time) time.Time {
	atHour := func(day time.Time, fallback int) time.Time {
		hour := fallback
		if m := meridiemTime.FindStringSubmatch(lowered); m != nil {
			hour, _ = strconv.Atoi(m[1])
			if m[2] == "pm" && hour != 12 {
				hour += 12
			} else if m[2] == "am" && hour == 12 {
				hour = 0
			}
		}
		return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
	}

	if strings.Contains(lowered, "tomorrow") {
		return atHour(now.AddDate(0, 0, 1), 9)
	}
	if strings.Contains(lowered, "today") && meridiemTime.MatchString(lowered) {
		return atHour(now, now.Hour())
	}
	if m := inHours.FindStringSubmatch(lowered); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(n) * time.Hour)
	}
	if m := inMinutes.FindStringSubmatch(lowered); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(n) * time.Minute)
	}
	return now.Add(time.Hour)
}
