package agents

import (
	"context"

	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
)

// MailHandler answers mail requests until an inbox integration exists.
type MailHandler struct{}

func NewMailHandler() MailHandler { return MailHandler{} }

func (MailHandler) Name() string { return assistant.MailAgent }

func (MailHandler) Handle(_ context.Context, query string, req *agent.Request) (*agent.Result, error) {
	if _, err := requireUser(req); err != nil {
		return nil, err
	}
	return &agent.Result{
		Reply: "Mail integration is not connected yet.",
		Data:  map[string]interface{}{"query": query},
	}, nil
}
