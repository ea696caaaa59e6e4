// internal/providers/gemini/provider.go
package gemini

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/TayyabArif/Firtz/internal/config"
	"github.com/TayyabArif/Firtz/internal/providers/common"
)

const (
	callTimeout   = 60 * time.Second
	retryAttempts = 2
	retryDelay    = time.Second
)

// Provider answers queries through the Google AI Gemini API. Model
// availability shifts between accounts, so a candidate list is walked
// until one responds.
type Provider struct {
	apiKey  string
	models  []string
	limiter *rate.Limiter
	logger  *zap.Logger
	client  *genai.Client
}

func New(cfg *config.Config, logger *zap.Logger) *Provider {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.GoogleAIAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		client = nil
	}

	logger.Info("gemini provider configured",
		zap.String("api_key", common.MaskAPIKey(cfg.GoogleAIAPIKey)),
		zap.Strings("models", cfg.GeminiModels))

	return &Provider{
		apiKey:  cfg.GoogleAIAPIKey,
		models:  cfg.GeminiModels,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger,
		client:  client,
	}
}

func (p *Provider) Type() common.ProviderType {
	return common.ProviderGemini
}

func (p *Provider) Execute(ctx context.Context, req common.Request) common.Result {
	started := time.Now()
	requestID := common.NewRequestID("gemini")

	if req.Prompt == "" {
		return common.ErrorResult(requestID, "invalid request format", started)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return common.ErrorResult(requestID, common.SanitizeError(err, p.apiKey), started)
	}

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	client := p.client
	if client == nil {
		var err error
		client, err = genai.NewClient(callCtx, &genai.ClientConfig{
			APIKey:  p.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return common.ErrorResult(requestID, common.SanitizeError(err, p.apiKey), started)
		}
	}

	content := []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: req.FullPrompt()},
			},
		},
	}
	generationConfig := &genai.GenerateContentConfig{
		Temperature: float32Ptr(0.7),
	}

	var lastErr error
	for _, model := range p.models {
		var result *genai.GenerateContentResponse
		err := common.Retry(callCtx, retryAttempts, retryDelay, func() error {
			var callErr error
			result, callErr = client.Models.GenerateContent(callCtx, model, content, generationConfig)
			return callErr
		})
		if err != nil {
			lastErr = err
			p.logger.Warn("gemini model failed, trying next",
				zap.String("model", model),
				zap.String("error", common.SanitizeError(err, p.apiKey)))
			continue
		}

		var text string
		if len(result.Candidates) > 0 && result.Candidates[0].Content != nil && len(result.Candidates[0].Content.Parts) > 0 {
			text = result.Candidates[0].Content.Parts[0].Text
		}
		if text == "" {
			lastErr = fmt.Errorf("empty response from model %s", model)
			continue
		}

		tokens := 0
		if result.UsageMetadata != nil {
			tokens = int(result.UsageMetadata.TotalTokenCount)
		}

		payload := &common.Payload{
			Content:       text,
			Model:         model,
			TokenCount:    tokens,
			WebSearchUsed: true,
		}
		cost := common.EstimateCost("gemini", model, tokens, true)

		p.logger.Debug("gemini query succeeded",
			zap.String("request_id", requestID),
			zap.String("model", model),
			zap.Int("tokens", tokens))

		return common.SuccessResult(requestID, payload, cost, started)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no gemini models configured")
	}
	return common.ErrorResult(requestID, common.SanitizeError(lastErr, p.apiKey), started)
}

func float32Ptr(f float32) *float32 {
	return &f
}
