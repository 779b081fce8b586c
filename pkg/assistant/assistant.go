// Package assistant holds the names and errors shared by the routing core.
package assistant

import (
	"errors"
	"fmt"
)

// Capability names. The string values are part of the routing contract and are
// returned to clients in the "agent" field.
const (
	MemoryAgent    = "memory_agent"
	TaskAgent      = "task_agent"
	ProfileAgent   = "profile_agent"
	KnowledgeAgent = "knowledge_agent"
	RecallAgent    = "recall_agent"
	CalendarAgent  = "calendar_agent"
	MailAgent      = "mail_agent"
	ResearchAgent  = "research_agent"
	ToolsAgent     = "tools_agent"
	GeneralAgent   = "general_agent"

	// Pseudo agents recorded for short-circuited conversation paths.
	VoiceTranscription = "voice_transcription"
	ImageAnalysis      = "image_analysis"
)

// ErrValidation marks input the caller must fix. It is never retried.
var ErrValidation = errors.New("validation error")

var (
	ErrUserRequired = fmt.Errorf("%w: user_id is required", ErrValidation)
	ErrEmptyQuery   = fmt.Errorf("%w: query must be non-empty", ErrValidation)
	ErrEmptyMessage = fmt.Errorf("%w: message must contain text, voice, or image content", ErrValidation)
)
