package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TayyabArif/Firtz/internal/config"
)

func fullConfig() *config.Config {
	return &config.Config{
		AzureOpenAIEndpoint:    "https://example.openai.azure.com",
		AzureOpenAIKey:         "azure-key",
		AzureOpenAIDeployments: []string{"gpt-4o"},
		AzureOpenAIAPIVersions: []string{"2024-02-01"},
		GoogleAIAPIKey:         "google-key",
		GeminiModels:           []string{"gemini-1.5-flash"},
		PerplexityAPIKey:       "pplx-key",
		PerplexityModel:        "sonar",
	}
}

func TestNewByType(t *testing.T) {
	cfg := fullConfig()
	for _, typ := range All() {
		adapter, err := New(typ, cfg, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, typ, adapter.Type())
	}
}

func TestNewUnsupportedType(t *testing.T) {
	_, err := New(Type("claude"), fullConfig(), zap.NewNop())
	assert.Error(t, err)
}

func TestNewMissingConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		typ    Type
	}{
		{name: "chatgpt without endpoint", mutate: func(c *config.Config) { c.AzureOpenAIEndpoint = "" }, typ: TypeChatGPT},
		{name: "chatgpt without key", mutate: func(c *config.Config) { c.AzureOpenAIKey = "" }, typ: TypeChatGPT},
		{name: "gemini without key", mutate: func(c *config.Config) { c.GoogleAIAPIKey = "" }, typ: TypeGemini},
		{name: "perplexity without key", mutate: func(c *config.Config) { c.PerplexityAPIKey = "" }, typ: TypePerplexity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fullConfig()
			tt.mutate(cfg)
			_, err := New(tt.typ, cfg, zap.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestNewSetOrder(t *testing.T) {
	adapters, err := NewSet(fullConfig(), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, adapters, 3)
	assert.Equal(t, TypeChatGPT, adapters[0].Type())
	assert.Equal(t, TypeGemini, adapters[1].Type())
	assert.Equal(t, TypePerplexity, adapters[2].Type())
}

func TestNewSetFailsWhenProviderUnconfigured(t *testing.T) {
	cfg := fullConfig()
	cfg.PerplexityAPIKey = ""
	_, err := NewSet(cfg, zap.NewNop())
	assert.Error(t, err)
}
