package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		apiKey    string
		wantModel string
		wantNil   bool
		wantErr   bool
	}{
		{name: "openai", provider: ProviderOpenAI, apiKey: "sk-test", wantModel: "text-embedding-3-small"},
		{name: "openai without key", provider: ProviderOpenAI, wantErr: true},
		{name: "ollama default model", provider: ProviderOllama, wantModel: "nomic-embed-text"},
		{name: "gemini", provider: ProviderGemini, apiKey: "key", wantModel: "text-embedding-004"},
		{name: "jina", provider: ProviderJina, apiKey: "key", wantModel: "jina-embeddings-v3"},
		{name: "disabled", provider: ProviderNone, wantNil: true},
		{name: "unknown", provider: "cohere", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewEmbeddingProvider(tt.provider, tt.apiKey, "", "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, tt.wantModel, p.ModelName())
		})
	}
}
