package agents

import (
	"context"
	"strings"

	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
	"jenny-assistant-be/pkg/llm"
)

const knowledgePrompt = "Provide a concise answer (<=100 words). If relevant, suggest how to save this information.\nQuestion: "

type KnowledgeHandler struct {
	llm    llm.LLMProvider
	memory MemoryClient
	source string
	logger logger.ILogger
}

func NewKnowledgeHandler(provider llm.LLMProvider, memory MemoryClient, source string, log logger.ILogger) *KnowledgeHandler {
	return &KnowledgeHandler{llm: provider, memory: memory, source: source, logger: log}
}

func (h *KnowledgeHandler) Name() string { return assistant.KnowledgeAgent }

// Handle answers from the model and saves the answer when the user asked to
// remember it.
func (h *KnowledgeHandler) Handle(ctx context.Context, query string, req *agent.Request) (*agent.Result, error) {
	userID, err := requireUser(req)
	if err != nil {
		return nil, err
	}

	answer, err := h.llm.Generate(ctx, knowledgePrompt+query, llm.WithMaxTokens(256))
	if err != nil {
		return failure(h.logger, "KnowledgeAgent", "I couldn't look that up right now.", err, userID), nil
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "I couldn't find anything definitive."
	}

	if h.memory != nil && strings.Contains(strings.ToLower(query), "remember") {
		if _, err := h.memory.Add(ctx, answer, userID); err != nil {
			h.logger.Warn("KnowledgeAgent", "Failed to save answer to memory", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}

	return &agent.Result{Reply: answer, Data: map[string]interface{}{"source": h.source}}, nil
}
