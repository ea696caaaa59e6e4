// internal/providers/chatgpt/provider.go
package chatgpt

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/TayyabArif/Firtz/internal/config"
	"github.com/TayyabArif/Firtz/internal/providers/common"
)

const (
	callTimeout   = 60 * time.Second
	retryAttempts = 2
	retryDelay    = time.Second
)

// combo is one (deployment, api-version) pair with its pre-built
// client. Azure binds the api version into the client, so each version
// gets its own.
type combo struct {
	client     openai.Client
	deployment string
	apiVersion string
}

// Provider answers queries through Azure OpenAI chat completions. It
// walks a prioritized list of deployment and api-version pairs and
// short-circuits on the first one that responds.
type Provider struct {
	combos  []combo
	apiKey  string
	limiter *rate.Limiter
	logger  *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Provider {
	combos := make([]combo, 0, len(cfg.AzureOpenAIDeployments)*len(cfg.AzureOpenAIAPIVersions))
	for _, deployment := range cfg.AzureOpenAIDeployments {
		for _, version := range cfg.AzureOpenAIAPIVersions {
			combos = append(combos, combo{
				client: openai.NewClient(
					azure.WithEndpoint(cfg.AzureOpenAIEndpoint, version),
					azure.WithAPIKey(cfg.AzureOpenAIKey),
				),
				deployment: deployment,
				apiVersion: version,
			})
		}
	}

	logger.Info("chatgpt provider configured",
		zap.String("endpoint", cfg.AzureOpenAIEndpoint),
		zap.String("api_key", common.MaskAPIKey(cfg.AzureOpenAIKey)),
		zap.Strings("deployments", cfg.AzureOpenAIDeployments),
		zap.Strings("api_versions", cfg.AzureOpenAIAPIVersions))

	return &Provider{
		combos:  combos,
		apiKey:  cfg.AzureOpenAIKey,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger,
	}
}

func (p *Provider) Type() common.ProviderType {
	return common.ProviderChatGPT
}

func (p *Provider) Execute(ctx context.Context, req common.Request) common.Result {
	started := time.Now()
	requestID := common.NewRequestID("chatgpt")

	if req.Prompt == "" {
		return common.ErrorResult(requestID, "invalid request format", started)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return common.ErrorResult(requestID, common.SanitizeError(err, p.apiKey), started)
	}

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var lastErr error
	for _, c := range p.combos {
		var response *openai.ChatCompletion
		err := common.Retry(callCtx, retryAttempts, retryDelay, func() error {
			var callErr error
			response, callErr = c.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
				Messages: []openai.ChatCompletionMessageParamUnion{
					openai.SystemMessage("You are a helpful assistant that provides accurate, comprehensive answers to questions."),
					openai.UserMessage(req.FullPrompt()),
				},
				Model:       openai.ChatModel(c.deployment),
				Temperature: openai.Float(0.7),
				MaxTokens:   openai.Int(2000),
			})
			return callErr
		})
		if err != nil {
			lastErr = err
			p.logger.Warn("chatgpt deployment failed, trying next",
				zap.String("deployment", c.deployment),
				zap.String("api_version", c.apiVersion),
				zap.String("error", common.SanitizeError(err, p.apiKey)))
			continue
		}

		if len(response.Choices) == 0 {
			lastErr = fmt.Errorf("no response choices returned")
			continue
		}

		tokens := int(response.Usage.TotalTokens)
		payload := &common.Payload{
			Content:    response.Choices[0].Message.Content,
			Model:      c.deployment,
			TokenCount: tokens,
		}
		cost := common.EstimateCost("chatgpt", c.deployment, tokens, false)

		p.logger.Debug("chatgpt query succeeded",
			zap.String("request_id", requestID),
			zap.String("deployment", c.deployment),
			zap.Int("tokens", tokens))

		return common.SuccessResult(requestID, payload, cost, started)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no azure openai deployments configured")
	}
	return common.ErrorResult(requestID, common.SanitizeError(lastErr, p.apiKey), started)
}
