// Package intent maps an utterance and the current session onto a single
// capability name.
package intent

import (
	"strings"

	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/store"
)

// Rule pairs a capability with the substrings that select it.
type Rule struct {
	Intent   string
	Triggers []string
}

// DefaultRules is the routing table. Order matters: the first rule with a
// matching trigger wins, so "remind me to note the benefits" goes to memory.
func DefaultRules() []Rule {
	return []Rule{
		{Intent: assistant.MemoryAgent, Triggers: []string{"remember", "note", "save", "favourite", "favorite"}},
		{Intent: assistant.TaskAgent, Triggers: []string{"remind", "task", "todo", "list", "complete", "delete"}},
		{Intent: assistant.ProfileAgent, Triggers: []string{"profile", "preference", "diet", "habit"}},
		{Intent: assistant.KnowledgeAgent, Triggers: []string{"benefits", "information", "explain", "tell me about", "research"}},
		{Intent: assistant.RecallAgent, Triggers: []string{"what do i", "what are my", "who am i", "summary"}},
		{Intent: assistant.CalendarAgent, Triggers: []string{"calendar", "meet"}},
		{Intent: assistant.MailAgent, Triggers: []string{"email", "inbox"}},
		{Intent: assistant.ResearchAgent, Triggers: []string{"search", "research"}},
		{Intent: assistant.ToolsAgent, Triggers: []string{"use tool", "execute", "run tool", "what tools", "list tools", "file read", "web search"}},
	}
}

type Classifier struct {
	rules    []Rule
	fallback string
}

func NewClassifier(rules []Rule, fallback string) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	if fallback == "" {
		fallback = assistant.GeneralAgent
	}
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		triggers := make([]string, len(r.Triggers))
		for j, t := range r.Triggers {
			triggers[j] = strings.ToLower(t)
		}
		normalized[i] = Rule{Intent: r.Intent, Triggers: triggers}
	}
	return &Classifier{rules: normalized, fallback: fallback}
}

// Classify resolves the capability for query. A pending reminder always routes
// back to the task capability so the follow-up answer completes it.
func (c *Classifier) Classify(query string, snap *store.Snapshot) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", assistant.ErrEmptyQuery
	}
	if snap != nil && snap.PendingTask != nil {
		return assistant.TaskAgent, nil
	}

	lowered := strings.ToLower(query)
	for _, rule := range c.rules {
		for _, trigger := range rule.Triggers {
			if strings.Contains(lowered, trigger) {
				return rule.Intent, nil
			}
		}
	}
	return c.fallback, nil
}

// Intents lists every capability the classifier can produce, in table order,
// followed by the fallback.
func (c *Classifier) Intents() []string {
	seen := make(map[string]bool, len(c.rules)+1)
	out := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		if !seen[r.Intent] {
			seen[r.Intent] = true
			out = append(out, r.Intent)
		}
	}
	if !seen[c.fallback] {
		out = append(out, c.fallback)
	}
	return out
}
