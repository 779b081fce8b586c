package agents

import (
	"context"
	"fmt"
	"strings"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
	"jenny-assistant-be/pkg/llm"
	"jenny-assistant-be/pkg/mem0"
)

const recallSystemPrompt = "You are Jenny, a helpful personal assistant."

type RecallHandler struct {
	memory MemoryClient
	tasks  TaskStore
	llm    llm.LLMProvider
	logger logger.ILogger
}

func NewRecallHandler(memory MemoryClient, tasks TaskStore, provider llm.LLMProvider, log logger.ILogger) *RecallHandler {
	return &RecallHandler{memory: memory, tasks: tasks, llm: provider, logger: log}
}

func (h *RecallHandler) Name() string { return assistant.RecallAgent }

func (h *RecallHandler) Handle(ctx context.Context, query string, req *agent.Request) (*agent.Result, error) {
	userID, err := requireUser(req)
	if err != nil {
		return nil, err
	}

	var memories []mem0.Memory
	if res, err := h.memory.Search(ctx, query, userID, 5); err != nil {
		h.logger.Warn("RecallAgent", "Memory search failed", map[string]interface{}{"user_id": userID, "error": err.Error()})
	} else {
		memories = res.Items()
	}

	tasks, err := h.tasks.ListOpen(ctx, userID, openTaskLimit)
	if err != nil {
		h.logger.Warn("RecallAgent", "Task lookup failed", map[string]interface{}{"user_id": userID, "error": err.Error()})
		tasks = nil
	}

	prompt := fmt.Sprintf("User question: %s\n\nUse the information below to answer. If you lack data, state that you don't know and invite the user to tell you.\n\n%s",
		query, formatRecallContext(memories, tasks))

	answer, err := h.llm.Chat(ctx, []llm.Message{
		{Role: "system", Content: recallSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return failure(h.logger, "RecallAgent", "I'm not sure right now, but I'm ready to help with something else.", err, userID), nil
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "I'm still thinking about that."
	}

	return &agent.Result{
		Reply: answer,
		Data: map[string]interface{}{
			"memories": memories,
			"tasks":    tasks,
		},
	}, nil
}

func formatRecallContext(memories []mem0.Memory, tasks []*dto.TaskResponse) string {
	var sections []string
	if lines := memoryLines(memories); len(lines) > 0 {
		sections = append(sections, "Memories:\n- "+strings.Join(lines, "\n- "))
	}
	if len(tasks) > 0 {
		lines := make([]string, 0, len(tasks))
		for _, t := range tasks {
			lines = append(lines, fmt.Sprintf("- %s (status: %s)", t.Title, t.Status))
		}
		sections = append(sections, "Tasks:\n"+strings.Join(lines, "\n"))
	}
	if len(sections) == 0 {
		return "No prior information."
	}
	return strings.Join(sections, "\n\n")
}
