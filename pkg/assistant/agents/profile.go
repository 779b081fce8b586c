package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
)

// LabelEmail holds the address reminders are mailed to.
const LabelEmail = "email"

var (
	profileLabels = []string{"drink", "diet", "habit", "music", LabelEmail}
	profileVerbs  = []string{"set", "update", "remember", "my"}
	emailAddress  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

type ProfileHandler struct {
	profiles ProfileStore
	memory   MemoryClient
	logger   logger.ILogger
}

func NewProfileHandler(profiles ProfileStore, memory MemoryClient, log logger.ILogger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, memory: memory, logger: log}
}

func (h *ProfileHandler) Name() string { return assistant.ProfileAgent }

func (h *ProfileHandler) Handle(ctx context.Context, query string, req *agent.Request) (*agent.Result, error) {
	userID, err := requireUser(req)
	if err != nil {
		return nil, err
	}
	lowered := strings.ToLower(query)

	if label := parseLabel(lowered); label != "" && containsAny(lowered, profileVerbs) {
		value := query
		if label == LabelEmail {
			value = emailAddress.FindString(query)
			if value == "" {
				return agent.Reply("Which email address should I use?"), nil
			}
		}
		if err := h.profiles.SavePreference(ctx, userID, label, value); err != nil {
			return failure(h.logger, "ProfileAgent", "I couldn't update your profile right now.", err, userID), nil
		}
		// the preference store is authoritative; the memory copy is best effort
		if _, err := h.memory.Add(ctx, query, userID); err != nil {
			h.logger.Warn("ProfileAgent", "Failed to mirror preference to memory", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
		return agent.Reply(fmt.Sprintf("Updated your %s preference.", label)), nil
	}

	prefs, err := h.profiles.Preferences(ctx, userID, 5)
	if err != nil {
		return failure(h.logger, "ProfileAgent", "I couldn't load your profile right now.", err, userID), nil
	}

	if len(prefs) == 0 {
		if lines := memoryLines(h.memory.GetUserContext(ctx, userID, 5)); len(lines) > 0 {
			return agent.Reply("Here's what I remember: " + strings.Join(lines, "; ")), nil
		}
		return agent.Reply("I don't have profile info yet. Tell me something about yourself!"), nil
	}

	lines := make([]string, 0, len(prefs))
	out := make([]map[string]string, 0, len(prefs))
	for _, p := range prefs {
		lines = append(lines, fmt.Sprintf("%s: %s", capitalize(p.Label), p.Value))
		out = append(out, map[string]string{"label": p.Label, "value": p.Value})
	}
	return &agent.Result{
		Reply: "Your profile: " + strings.Join(lines, "; "),
		Data:  map[string]interface{}{"preferences": out},
	}, nil
}

func parseLabel(lowered string) string {
	for _, label := range profileLabels {
		if strings.Contains(lowered, label) {
			return label
		}
	}
	return ""
}
