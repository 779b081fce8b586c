package factory

import (
	"fmt"
	"time"

	"jenny-assistant-be/pkg/llm"
	"jenny-assistant-be/pkg/llm/gemini"
	"jenny-assistant-be/pkg/llm/ollama"
	"jenny-assistant-be/pkg/llm/openai"
)

type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.New(cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "deepseek", "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s provider requires an API key", cfg.Provider)
		}
		return openai.NewProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewProvider(cfg.APIKey, cfg.Model, cfg.Timeout), nil
	case "offline", "":
		return llm.OfflineProvider{}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
