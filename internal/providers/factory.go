package providers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/TayyabArif/Firtz/internal/config"
	"github.com/TayyabArif/Firtz/internal/providers/chatgpt"
	"github.com/TayyabArif/Firtz/internal/providers/gemini"
	"github.com/TayyabArif/Firtz/internal/providers/perplexity"
)

// New constructs the adapter for the given provider type.
func New(t Type, cfg *config.Config, logger *zap.Logger) (Adapter, error) {
	switch t {
	case TypeChatGPT:
		if cfg.AzureOpenAIEndpoint == "" || cfg.AzureOpenAIKey == "" {
			return nil, fmt.Errorf("chatgpt provider: azure openai endpoint/key not configured")
		}
		return chatgpt.New(cfg, logger), nil
	case TypeGemini:
		if cfg.GoogleAIAPIKey == "" {
			return nil, fmt.Errorf("gemini provider: google ai api key not configured")
		}
		return gemini.New(cfg, logger), nil
	case TypePerplexity:
		if cfg.PerplexityAPIKey == "" {
			return nil, fmt.Errorf("perplexity provider: api key not configured")
		}
		return perplexity.New(cfg, logger), nil
	}
	return nil, fmt.Errorf("unsupported provider type: %q", t)
}

// NewSet constructs all three adapters in dispatch order. Construction
// fails if any provider is missing configuration; partial fan-outs are
// a runtime concern, not a wiring one.
func NewSet(cfg *config.Config, logger *zap.Logger) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(All()))
	for _, t := range All() {
		a, err := New(t, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("building provider set: %w", err)
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}
