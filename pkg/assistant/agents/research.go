package agents

import (
	"context"
	"strings"

	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
	"jenny-assistant-be/pkg/llm"
)

const researchPrompt = "Research the topic below and summarize the key facts in at most 150 words. " +
	"Say so plainly if you are unsure.\nTopic: "

type ResearchHandler struct {
	llm    llm.LLMProvider
	logger logger.ILogger
}

func NewResearchHandler(provider llm.LLMProvider, log logger.ILogger) *ResearchHandler {
	return &ResearchHandler{llm: provider, logger: log}
}

func (h *ResearchHandler) Name() string { return assistant.ResearchAgent }

func (h *ResearchHandler) Handle(ctx context.Context, query string, req *agent.Request) (*agent.Result, error) {
	userID, err := requireUser(req)
	if err != nil {
		return nil, err
	}

	summary, err := h.llm.Generate(ctx, researchPrompt+query, llm.WithMaxTokens(400))
	if err != nil {
		res := failure(h.logger, "ResearchAgent", "I couldn't research that right now.", err, userID)
		res.Error = "Research agent failed: " + err.Error()
		return res, nil
	}

	return &agent.Result{
		Reply: strings.TrimSpace(summary),
		Data:  map[string]interface{}{"query": query},
	}, nil
}
