// services/dispatcher.go
package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/TayyabArif/Firtz/internal/analyzer"
	"github.com/TayyabArif/Firtz/internal/models"
	"github.com/TayyabArif/Firtz/internal/providers"
	"github.com/TayyabArif/Firtz/internal/providers/common"
)

type dispatcher struct {
	adapters []providers.Adapter
	logger   *zap.Logger
}

// NewDispatcher builds the fan-out service over the given adapters.
// Adapters run sequentially in the order given.
func NewDispatcher(adapters []providers.Adapter, logger *zap.Logger) Dispatcher {
	return &dispatcher{adapters: adapters, logger: logger}
}

// queryContext frames the raw query with the brand's category and
// keyword so providers answer in the intended space.
func queryContext(brand *models.Brand, query models.Query) string {
	return fmt.Sprintf("This query is related to %s in the %s category. Topic: %s.",
		brand.CompanyName, query.Category, query.Keyword)
}

func (d *dispatcher) RunQuery(ctx context.Context, brand *models.Brand, query models.Query) models.ProviderResultSet {
	req := common.Request{
		Prompt:  query.Query,
		Context: queryContext(brand, query),
	}

	var set models.ProviderResultSet
	for _, adapter := range d.adapters {
		result := adapter.Execute(ctx, req)
		normalized := d.normalize(adapter.Type(), result)

		switch adapter.Type() {
		case providers.TypeChatGPT:
			set.ChatGPT = normalized
		case providers.TypeGemini:
			set.Gemini = normalized
		case providers.TypePerplexity:
			set.Perplexity = normalized
		}

		if normalized.Error != nil {
			d.logger.Warn("provider call failed",
				zap.String("provider", string(adapter.Type())),
				zap.String("query", query.Query),
				zap.String("error", *normalized.Error))
		}
	}
	return set
}

// normalize maps the provider envelope onto the stored result shape and
// runs citation extraction over successful responses.
func (d *dispatcher) normalize(t providers.Type, result common.Result) *models.ProviderResult {
	out := &models.ProviderResult{
		Timestamp: result.Timestamp,
	}
	if out.Timestamp.IsZero() {
		out.Timestamp = time.Now().UTC()
	}
	if result.ResponseTimeMs > 0 {
		ms := result.ResponseTimeMs
		out.ResponseTimeMs = &ms
	}

	if !result.Success() {
		msg := result.Err
		if msg == "" {
			msg = "provider returned no data"
		}
		out.Error = &msg
		return out
	}

	data := result.Data
	out.Response = data.Content
	out.Citations = analyzer.ExtractCitations(analyzer.Source(t), data.Content, data.Citations)
	if data.TokenCount > 0 {
		tokens := data.TokenCount
		out.TokenCount = &tokens
	}
	if data.WebSearchUsed {
		used := true
		out.WebSearchUsed = &used
	}
	if data.RealTimeData {
		live := true
		out.RealTimeData = &live
	}
	return out
}
