package agents

import (
	"context"
	"strings"

	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
	"jenny-assistant-be/pkg/mem0"
)

// GeneralHandler answers from memory when it can and falls back to the
// knowledge handler otherwise.
type GeneralHandler struct {
	memory    MemoryClient
	knowledge agent.Handler
	logger    logger.ILogger
}

func NewGeneralHandler(memory MemoryClient, knowledge agent.Handler, log logger.ILogger) *GeneralHandler {
	return &GeneralHandler{memory: memory, knowledge: knowledge, logger: log}
}

func (h *GeneralHandler) Name() string { return assistant.GeneralAgent }

func (h *GeneralHandler) Handle(ctx context.Context, query string, req *agent.Request) (*agent.Result, error) {
	userID, err := requireUser(req)
	if err != nil {
		return nil, err
	}

	var memories []mem0.Memory
	if res, err := h.memory.Search(ctx, query, userID, 5); err != nil {
		h.logger.Warn("GeneralAgent", "Memory search failed", map[string]interface{}{"user_id": userID, "error": err.Error()})
	} else {
		memories = res.Items()
	}
	if len(memories) == 0 {
		memories = h.memory.GetUserContext(ctx, userID, 5)
	}

	if lines := memoryLines(memories); len(lines) > 0 {
		return &agent.Result{
			Message: "Here's what I remember that might help:\n- " + strings.Join(lines, "\n- "),
			Data:    map[string]interface{}{"memory_context": memories},
		}, nil
	}

	knowledge, err := h.knowledge.Handle(ctx, query, req)
	if err != nil {
		return nil, err
	}
	return &agent.Result{
		Message: knowledge.Reply,
		Error:   knowledge.Error,
		Data:    map[string]interface{}{"knowledge": knowledge},
	}, nil
}
