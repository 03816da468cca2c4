package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"MAX_GUIDELINES_PER_RESPONSE", "FATIGUE_FACTOR", "RECENT_MESSAGES_CONTEXT",
		"MATCH_THRESHOLD", "GUIDELINE_CACHE_TTL", "HYBRID_WEIGHT", "OTEL_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 3, cfg.Guideline.MaxGuidelinesPerResponse)
	assert.Equal(t, 0.95, cfg.Guideline.FatigueFactor)
	assert.Equal(t, 3, cfg.Guideline.RecentMessagesContext)
	assert.Equal(t, 30.0, cfg.Guideline.MatchThreshold)
	assert.Equal(t, 5*time.Minute, cfg.Guideline.CacheTTL)
	assert.Equal(t, 0.8, cfg.Guideline.HybridWeight)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MAX_GUIDELINES_PER_RESPONSE", "5")
	t.Setenv("FATIGUE_FACTOR", "0.9")
	t.Setenv("GUIDELINE_CACHE_TTL", "90s")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("HYBRID_WEIGHT", "not-a-number")

	cfg := Load()

	assert.Equal(t, 5, cfg.Guideline.MaxGuidelinesPerResponse)
	assert.Equal(t, 0.9, cfg.Guideline.FatigueFactor)
	assert.Equal(t, 90*time.Second, cfg.Guideline.CacheTTL)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 0.8, cfg.Guideline.HybridWeight)
}

func TestVectorSearchConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"openai with key", Config{Ai: AIConfig{EmbeddingProvider: "openai"}, Keys: APIKeys{OpenAI: "sk-test"}}, true},
		{"openai placeholder key", Config{Ai: AIConfig{EmbeddingProvider: "openai"}, Keys: APIKeys{OpenAI: "changeme"}}, false},
		{"gemini without key", Config{Ai: AIConfig{EmbeddingProvider: "gemini"}}, false},
		{"jina with key", Config{Ai: AIConfig{EmbeddingProvider: "jina"}, Keys: APIKeys{Jina: "jina_x"}}, true},
		{"ollama", Config{Ai: AIConfig{EmbeddingProvider: "ollama", OllamaBaseURL: "http://localhost:11434"}}, true},
		{"none", Config{Ai: AIConfig{EmbeddingProvider: "none"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.VectorSearchConfigured())
		})
	}
}

func TestAPIKeys(t *testing.T) {
	cfg := Config{
		Ai:   AIConfig{EmbeddingProvider: "gemini", LLMProvider: "huggingface"},
		Keys: APIKeys{OpenAI: "sk-1", GoogleGemini: "g-1", HuggingFace: "hf-1"},
	}
	assert.Equal(t, "g-1", cfg.EmbeddingAPIKey())
	assert.Equal(t, "hf-1", cfg.LLMAPIKey())

	cfg.Ai.LLMProvider = "openai"
	assert.Equal(t, "sk-1", cfg.LLMAPIKey())
}
