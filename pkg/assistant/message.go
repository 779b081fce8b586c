package assistant

import "strings"

// IncomingMessage is the normalized multi-modal input accepted by the
// conversation front door.
type IncomingMessage struct {
	UserID   string                 `json:"user_id"`
	Text     string                 `json:"text,omitempty"`
	VoiceURL string                 `json:"voice_url,omitempty"`
	ImageURL string                 `json:"image_url,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Kind reports which payload path the message takes. Text wins over voice,
// voice wins over image.
func (m *IncomingMessage) Kind() PayloadKind {
	switch {
	case strings.TrimSpace(m.Text) != "":
		return PayloadText
	case strings.TrimSpace(m.VoiceURL) != "":
		return PayloadVoice
	case strings.TrimSpace(m.ImageURL) != "":
		return PayloadImage
	default:
		return PayloadNone
	}
}

// Validate checks the message before any session state is touched.
func (m *IncomingMessage) Validate() error {
	if m == nil || strings.TrimSpace(m.UserID) == "" {
		return ErrUserRequired
	}
	if m.Kind() == PayloadNone {
		return ErrEmptyMessage
	}
	return nil
}

type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadText
	PayloadVoice
	PayloadImage
)
