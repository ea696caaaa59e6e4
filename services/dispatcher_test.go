package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TayyabArif/Firtz/internal/models"
	"github.com/TayyabArif/Firtz/internal/providers"
	"github.com/TayyabArif/Firtz/internal/providers/common"
)

type stubAdapter struct {
	typ    providers.Type
	result common.Result
	gotReq common.Request
}

func (s *stubAdapter) Type() providers.Type { return s.typ }

func (s *stubAdapter) Execute(_ context.Context, req common.Request) common.Result {
	s.gotReq = req
	return s.result
}

func successEnvelope(content string, citations ...models.Citation) common.Result {
	return common.Result{
		RequestID:      "req-1",
		Status:         common.StatusSuccess,
		Data:           &common.Payload{Content: content, Citations: citations, TokenCount: 12, WebSearchUsed: true},
		ResponseTimeMs: 150,
		Timestamp:      time.Now(),
	}
}

func errorEnvelope(message string) common.Result {
	return common.Result{
		RequestID:      "req-2",
		Status:         common.StatusError,
		Err:            message,
		ResponseTimeMs: 30,
		Timestamp:      time.Now(),
	}
}

func TestRunQueryMapsProvidersToSlots(t *testing.T) {
	chatgpt := &stubAdapter{typ: providers.TypeChatGPT, result: successEnvelope("Nike answer [ref](https://nike.com/a)")}
	gemini := &stubAdapter{typ: providers.TypeGemini, result: errorEnvelope("model unavailable")}
	perplexity := &stubAdapter{typ: providers.TypePerplexity, result: successEnvelope("Perplexity answer",
		models.Citation{URL: "https://example.com/source", Text: "source"})}

	d := NewDispatcher([]providers.Adapter{chatgpt, gemini, perplexity}, zap.NewNop())
	brand := testBrand("best running shoes")
	set := d.RunQuery(context.Background(), brand, brand.Queries[0])

	require.NotNil(t, set.ChatGPT)
	assert.Equal(t, "Nike answer [ref](https://nike.com/a)", set.ChatGPT.Response)
	assert.Nil(t, set.ChatGPT.Error)
	// Markdown citations got extracted during normalization.
	require.Len(t, set.ChatGPT.Citations, 1)
	assert.Equal(t, "https://nike.com/a", set.ChatGPT.Citations[0].URL)
	require.NotNil(t, set.ChatGPT.TokenCount)
	assert.Equal(t, 12, *set.ChatGPT.TokenCount)
	require.NotNil(t, set.ChatGPT.ResponseTimeMs)
	assert.Equal(t, int64(150), *set.ChatGPT.ResponseTimeMs)
	require.NotNil(t, set.ChatGPT.WebSearchUsed)
	assert.True(t, *set.ChatGPT.WebSearchUsed)

	// The failed provider still occupies its slot with the error.
	require.NotNil(t, set.Gemini)
	require.NotNil(t, set.Gemini.Error)
	assert.Equal(t, "model unavailable", *set.Gemini.Error)
	assert.Empty(t, set.Gemini.Response)

	// Structured citations pass through extraction.
	require.NotNil(t, set.Perplexity)
	require.Len(t, set.Perplexity.Citations, 1)
	assert.Equal(t, "https://example.com/source", set.Perplexity.Citations[0].URL)
}

func TestRunQueryBuildsContextPrompt(t *testing.T) {
	chatgpt := &stubAdapter{typ: providers.TypeChatGPT, result: successEnvelope("answer")}
	d := NewDispatcher([]providers.Adapter{chatgpt}, zap.NewNop())

	brand := testBrand("best running shoes")
	d.RunQuery(context.Background(), brand, brand.Queries[0])

	assert.Equal(t, "best running shoes", chatgpt.gotReq.Prompt)
	assert.Equal(t, "This query is related to Nike in the footwear category. Topic: running shoes.", chatgpt.gotReq.Context)
}

func TestRunQueryOptionalFieldsStayAbsent(t *testing.T) {
	result := common.Result{
		Status:    common.StatusSuccess,
		Data:      &common.Payload{Content: "plain answer"},
		Timestamp: time.Now(),
	}
	chatgpt := &stubAdapter{typ: providers.TypeChatGPT, result: result}
	d := NewDispatcher([]providers.Adapter{chatgpt}, zap.NewNop())

	brand := testBrand("q")
	set := d.RunQuery(context.Background(), brand, brand.Queries[0])

	require.NotNil(t, set.ChatGPT)
	assert.Nil(t, set.ChatGPT.TokenCount)
	assert.Nil(t, set.ChatGPT.WebSearchUsed)
	assert.Nil(t, set.ChatGPT.RealTimeData)
	assert.Nil(t, set.ChatGPT.ResponseTimeMs)
	assert.Nil(t, set.ChatGPT.Error)
}
