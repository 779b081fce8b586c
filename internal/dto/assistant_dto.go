package dto

import (
	"time"

	"jenny-assistant-be/pkg/assistant/agent"
)

type AskRequest struct {
	UserId   string                 `json:"user_id" validate:"required"`
	Text     string                 `json:"text"`
	VoiceURL string                 `json:"voice_url" validate:"omitempty,url"`
	ImageURL string                 `json:"image_url" validate:"omitempty,url"`
	Metadata map[string]interface{} `json:"metadata"`
}

type AskResponse struct {
	Agent    string        `json:"agent"`
	Reply    string        `json:"reply"`
	Response *agent.Result `json:"response,omitempty"`
}

type HistoryEntryResponse struct {
	Role     string                 `json:"role"`
	Content  string                 `json:"content"`
	Agent    string                 `json:"agent,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type SessionResponse struct {
	UserId      string                 `json:"user_id"`
	History     []HistoryEntryResponse `json:"history"`
	LastIntent  string                 `json:"last_intent"`
	Metadata    map[string]interface{} `json:"metadata"`
	PendingTask map[string]string      `json:"pending_task,omitempty"`
	UpdatedAt   time.Time              `json:"updated_at"`
	MemoryOnly  bool                   `json:"memory_only"`
}

type RememberRequest struct {
	UserId string `json:"user_id" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

type MemoryItemResponse struct {
	Id      string  `json:"id,omitempty"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

type CalendarConnectResponse struct {
	Provider         string `json:"provider"`
	AuthorizationURL string `json:"authorization_url"`
	Message          string `json:"message"`
}

type CalendarStatusResponse struct {
	ConnectedCalendars []string `json:"connected_calendars"`
	AvailableProviders []string `json:"available_providers"`
}
