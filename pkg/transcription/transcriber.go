// Package transcription turns a voice message URL into text.
package transcription

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"jenny-assistant-be/pkg/llm/gemini"
)

// maxAudioBytes bounds what is inlined into a single request.
const maxAudioBytes = 20 << 20

const transcribePrompt = "Transcribe this audio message verbatim. Reply with the transcript only. If nothing intelligible is said, reply with an empty message."

type Transcriber interface {
	// Transcribe returns "" when nothing could be understood.
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// GeminiTranscriber downloads the audio and asks Gemini for a transcript.
type GeminiTranscriber struct {
	provider *gemini.Provider
	http     *http.Client
}

func NewGeminiTranscriber(provider *gemini.Provider, timeout time.Duration) *GeminiTranscriber {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiTranscriber{
		provider: provider,
		http:     &http.Client{Timeout: timeout},
	}
}

func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	audio, mimeType, err := t.download(ctx, audioURL)
	if err != nil {
		return "", err
	}
	if len(audio) == 0 {
		return "", nil
	}

	text, err := t.provider.GenerateParts(ctx, []*gemini.Part{
		{Text: transcribePrompt},
		{InlineData: &gemini.Blob{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(audio)}},
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (t *GeminiTranscriber) download(ctx context.Context, audioURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("audio url: %w", err)
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download audio: status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}
	if len(audio) > maxAudioBytes {
		return nil, "", fmt.Errorf("audio exceeds %d bytes", maxAudioBytes)
	}
	return audio, audioMimeType(resp.Header.Get("Content-Type"), audioURL), nil
}

func audioMimeType(header, audioURL string) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && strings.HasPrefix(mt, "audio/") {
		return mt
	}
	switch strings.ToLower(path.Ext(strings.SplitN(audioURL, "?", 2)[0])) {
	case ".mp3":
		return "audio/mp3"
	case ".wav":
		return "audio/wav"
	case ".m4a", ".aac":
		return "audio/aac"
	case ".flac":
		return "audio/flac"
	default:
		// Telegram voice notes
		return "audio/ogg"
	}
}

// Disabled is used when no Gemini key is configured. Every voice message then
// gets the clarification reply.
type Disabled struct{}

func (Disabled) Transcribe(context.Context, string) (string, error) { return "", nil }
