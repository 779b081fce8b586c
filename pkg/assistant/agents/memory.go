package agents

import (
	"context"
	"regexp"
	"strings"

	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
)

const searchPrefix = "search::"

var (
	preferenceTriggers = []string{"my favorite", "i like", "i love", "i prefer"}
	forgetTopic        = regexp.MustCompile(`(?i)forget(?: about)? (.+)`)
)

type MemoryHandler struct {
	memory MemoryClient
	logger logger.ILogger
}

func NewMemoryHandler(memory MemoryClient, log logger.ILogger) *MemoryHandler {
	return &MemoryHandler{memory: memory, logger: log}
}

func (h *MemoryHandler) Name() string { return assistant.MemoryAgent }

func (h *MemoryHandler) Handle(ctx context.Context, query string, req *agent.Request) (*agent.Result, error) {
	userID, err := requireUser(req)
	if err != nil {
		return nil, err
	}
	lowered := strings.ToLower(strings.TrimSpace(query))

	if strings.HasPrefix(lowered, searchPrefix) {
		return h.search(ctx, query, userID)
	}

	if strings.HasPrefix(lowered, "forget") || strings.HasPrefix(lowered, "remove") || strings.HasPrefix(lowered, "erase") {
		topic := strings.TrimSpace(query)
		if m := forgetTopic.FindStringSubmatch(query); m != nil {
			topic = strings.TrimSpace(m[1])
		}
		if err := h.memory.Forget(ctx, topic, userID); err != nil {
			return failure(h.logger, "MemoryAgent", "I couldn't update your memories right now.", err, userID), nil
		}
		return &agent.Result{Ack: "I've marked '" + topic + "' as outdated."}, nil
	}

	if _, err := h.memory.Add(ctx, query, userID); err != nil {
		return failure(h.logger, "MemoryAgent", "I couldn't save that right now.", err, userID), nil
	}
	if containsAny(lowered, preferenceTriggers) {
		return &agent.Result{Ack: "Updated your preference."}, nil
	}
	return &agent.Result{Ack: "Saved the memory."}, nil
}

func (h *MemoryHandler) search(ctx context.Context, query, userID string) (*agent.Result, error) {
	idx := strings.Index(strings.ToLower(query), searchPrefix)
	clean := strings.TrimSpace(query[idx+len(searchPrefix):])
	if clean == "" {
		clean = query
	}

	res, err := h.memory.Search(ctx, clean, userID, 5)
	if err != nil {
		return failure(h.logger, "MemoryAgent", "I couldn't search your memories right now.", err, userID), nil
	}

	items := res.Items()
	lines := memoryLines(items)
	if len(lines) == 0 {
		return &agent.Result{Reply: "I don't remember anything about that yet.", Data: map[string]interface{}{"results": items}}, nil
	}
	return &agent.Result{
		Reply: "Here's what I remember:\n- " + strings.Join(lines, "\n- "),
		Data:  map[string]interface{}{"results": items},
	}, nil
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
