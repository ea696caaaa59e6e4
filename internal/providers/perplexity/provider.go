// internal/providers/perplexity/provider.go
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/TayyabArif/Firtz/internal/config"
	"github.com/TayyabArif/Firtz/internal/models"
	"github.com/TayyabArif/Firtz/internal/providers/common"
)

const (
	defaultBaseURL = "https://api.perplexity.ai/chat/completions"
	retryAttempts  = 3
	retryDelay     = time.Second
)

// Provider answers queries through the Perplexity chat completions
// API. Perplexity grounds its answers in live web results and returns
// the source URLs in a citations array alongside the message.
type Provider struct {
	apiKey     string
	model      string
	baseURL    string
	limiter    *rate.Limiter
	logger     *zap.Logger
	httpClient *http.Client
}

func New(cfg *config.Config, logger *zap.Logger) *Provider {
	logger.Info("perplexity provider configured",
		zap.String("api_key", common.MaskAPIKey(cfg.PerplexityAPIKey)),
		zap.String("model", cfg.PerplexityModel))

	return &Provider{
		apiKey:  cfg.PerplexityAPIKey,
		model:   cfg.PerplexityModel,
		baseURL: defaultBaseURL,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
	Usage     struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (p *Provider) Type() common.ProviderType {
	return common.ProviderPerplexity
}

func (p *Provider) Execute(ctx context.Context, req common.Request) common.Result {
	started := time.Now()
	requestID := common.NewRequestID("perplexity")

	if req.Prompt == "" {
		return common.ErrorResult(requestID, "invalid request format", started)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return common.ErrorResult(requestID, common.SanitizeError(err, p.apiKey), started)
	}

	var parsed chatResponse
	err := common.Retry(ctx, retryAttempts, retryDelay, func() error {
		return p.call(ctx, req, &parsed)
	})
	if err != nil {
		return common.ErrorResult(requestID, common.SanitizeError(err, p.apiKey), started)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return common.ErrorResult(requestID, "empty response from perplexity", started)
	}

	citations := make([]models.Citation, 0, len(parsed.Citations))
	for _, u := range parsed.Citations {
		citations = append(citations, models.Citation{
			URL:    u,
			Text:   u,
			Source: string(common.ProviderPerplexity),
		})
	}

	payload := &common.Payload{
		Content:       parsed.Choices[0].Message.Content,
		Model:         p.model,
		TokenCount:    parsed.Usage.TotalTokens,
		Citations:     citations,
		WebSearchUsed: true,
		RealTimeData:  true,
	}
	cost := common.EstimateCost("perplexity", p.model, parsed.Usage.TotalTokens, true)

	p.logger.Debug("perplexity query succeeded",
		zap.String("request_id", requestID),
		zap.Int("tokens", parsed.Usage.TotalTokens),
		zap.Int("citations", len(citations)))

	return common.SuccessResult(requestID, payload, cost, started)
}

func (p *Provider) call(ctx context.Context, req common.Request, out *chatResponse) error {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "user", Content: req.FullPrompt()},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("perplexity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("perplexity API returned status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode perplexity response: %w", err)
	}
	return nil
}
