package factory

import (
	"fmt"

	"guideline-agent-be/pkg/llm"
	"guideline-agent-be/pkg/llm/ollama"
	"guideline-agent-be/pkg/llm/openai"
)

const huggingFaceRouterURL = "https://router.huggingface.co/v1"

type ProviderConfig struct {
	Provider    string // "openai", "ollama" or "huggingface"
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	defaults := []llm.Option{
		llm.WithTemperature(cfg.Temperature),
		llm.WithMaxTokens(cfg.MaxTokens),
	}

	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an api key")
		}
		return openai.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, defaults...), nil
	case "huggingface":
		// the router speaks the OpenAI chat completions protocol
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = huggingFaceRouterURL
		}
		return openai.NewOpenAIProvider(cfg.APIKey, baseURL, cfg.Model, defaults...), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, defaults...), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
