package factory

import (
	"fmt"

	"guideline-agent-be/pkg/embedding"
	"guideline-agent-be/pkg/embedding/jina"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
	ProviderJina   = "jina"
	ProviderNone   = "none"
)

// NewEmbeddingProvider returns nil, nil for ProviderNone: vector ranking stays disabled.
func NewEmbeddingProvider(providerType, apiKey, model, baseURL string) (embedding.EmbeddingProvider, error) {
	switch providerType {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires an api key")
		}
		return embedding.NewOpenAIProvider(apiKey), nil
	case ProviderOllama:
		return embedding.NewOllamaProvider(baseURL, model), nil
	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("gemini embedding provider requires an api key")
		}
		return embedding.NewGeminiProvider(apiKey), nil
	case ProviderJina:
		if apiKey == "" {
			return nil, fmt.Errorf("jina embedding provider requires an api key")
		}
		return jina.NewJinaProvider(apiKey), nil
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
