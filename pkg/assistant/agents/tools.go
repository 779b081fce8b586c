package agents

import (
	"context"
	"sort"
	"strings"

	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
)

var capabilityDescriptions = map[string]string{
	assistant.MemoryAgent:    "remember, search and forget facts about you",
	assistant.TaskAgent:      "create, list, complete and delete reminders",
	assistant.ProfileAgent:   "keep your preferences such as drink, diet or email",
	assistant.KnowledgeAgent: "answer general questions",
	assistant.RecallAgent:    "answer questions about what you told me",
	assistant.CalendarAgent:  "read and create events in your connected calendars",
	assistant.MailAgent:      "mail (not connected yet)",
	assistant.ResearchAgent:  "summarize a topic",
	assistant.ToolsAgent:     "list the available tools",
	assistant.GeneralAgent:   "everything else",
}

var webSearchPrefixes = []string{"web search for ", "web search ", "search for ", "look up "}

// ToolsHandler describes the registered capabilities and runs the web search
// tool through the research handler.
type ToolsHandler struct {
	capabilities func() []string
	research     agent.Handler
}

func NewToolsHandler(capabilities func() []string, research agent.Handler) *ToolsHandler {
	return &ToolsHandler{capabilities: capabilities, research: research}
}

func (h *ToolsHandler) Name() string { return assistant.ToolsAgent }

func (h *ToolsHandler) Handle(ctx context.Context, query string, req *agent.Request) (*agent.Result, error) {
	if _, err := requireUser(req); err != nil {
		return nil, err
	}
	lowered := strings.ToLower(query)

	switch {
	case strings.Contains(lowered, "what tools"), strings.Contains(lowered, "list tools"):
		return h.list(), nil
	case strings.Contains(lowered, "web search") || strings.Contains(lowered, "search for"):
		if h.research == nil {
			return agent.Reply("Web search is not available right now."), nil
		}
		term := query
		for _, prefix := range webSearchPrefixes {
			if i := strings.Index(lowered, prefix); i >= 0 {
				term = strings.TrimSpace(query[i+len(prefix):])
				break
			}
		}
		res, err := h.research.Handle(ctx, term, req)
		if err != nil {
			return nil, err
		}
		if res.Data == nil {
			res.Data = map[string]interface{}{}
		}
		res.Data["tool_used"] = "web_search"
		return res, nil
	case containsAny(lowered, []string{"file read", "read file", "execute", "run tool"}):
		return agent.Reply("That tool is not enabled on this assistant. Try 'list tools' to see what I can do."), nil
	default:
		return agent.Reply("I can search the web for you and route requests to my other skills. Try asking: 'search for...' or 'list tools'"), nil
	}
}

func (h *ToolsHandler) list() *agent.Result {
	var names []string
	if h.capabilities != nil {
		names = h.capabilities()
	}
	if len(names) == 0 {
		return agent.Reply("No tools currently available.")
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		desc, ok := capabilityDescriptions[name]
		if !ok {
			desc = "custom capability"
		}
		lines = append(lines, "- "+name+": "+desc)
	}
	return &agent.Result{
		Reply: "Available tools:\n" + strings.Join(lines, "\n"),
		Data:  map[string]interface{}{"tools": names},
	}
}
