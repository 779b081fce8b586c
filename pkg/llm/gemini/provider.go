// Package gemini implements llm.LLMProvider over the Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jenny-assistant-be/pkg/llm"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob is base64 encoded inline media (audio, images).
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type Content struct {
	Parts []*Part `json:"parts"`
	Role  string  `json:"role,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents          []*Content        `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type Candidate struct {
	Content *Content `json:"content"`
}

type generateResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type Provider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ llm.LLMProvider = &Provider{}

func NewProvider(apiKey, model string, timeout time.Duration) *Provider {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Provider{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the provider at another endpoint (tests, proxies).
func (p *Provider) WithBaseURL(url string) *Provider {
	p.baseURL = strings.TrimRight(url, "/")
	return p
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{Model: p.model, Temperature: 0.7}
	for _, o := range options {
		o(opts)
	}

	payload := generateRequest{
		GenerationConfig: &generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
		},
	}
	for _, msg := range history {
		switch msg.Role {
		case "system":
			payload.SystemInstruction = &Content{Parts: []*Part{{Text: msg.Content}}}
		case "assistant", "model":
			payload.Contents = append(payload.Contents, &Content{Role: "model", Parts: []*Part{{Text: msg.Content}}})
		default:
			payload.Contents = append(payload.Contents, &Content{Role: "user", Parts: []*Part{{Text: msg.Content}}})
		}
	}

	return p.send(ctx, opts.Model, payload)
}

// GenerateParts sends a single multi-part user turn, e.g. an instruction plus
// inline audio.
func (p *Provider) GenerateParts(ctx context.Context, parts []*Part, options ...llm.Option) (string, error) {
	opts := &llm.Options{Model: p.model, Temperature: 0.2}
	for _, o := range options {
		o(opts)
	}
	payload := generateRequest{
		Contents:         []*Content{{Role: "user", Parts: parts}},
		GenerationConfig: &generationConfig{Temperature: opts.Temperature, MaxOutputTokens: opts.MaxTokens},
	}
	return p.send(ctx, opts.Model, payload)
}

func (p *Provider) send(ctx context.Context, model string, payload generateRequest) (string, error) {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var geminiRes generateResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", err
	}

	return FirstText(geminiRes.Candidates), nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// FirstText returns the first text part of the first candidate, or "".
func FirstText(candidates []Candidate) string {
	if len(candidates) == 0 || candidates[0].Content == nil {
		return ""
	}
	for _, part := range candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			return strings.TrimSpace(part.Text)
		}
	}
	return ""
}
