package perplexity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TayyabArif/Firtz/internal/config"
	"github.com/TayyabArif/Firtz/internal/providers/common"
	"go.uber.org/zap"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := New(&config.Config{
		PerplexityAPIKey: "pplx-test-key-1234",
		PerplexityModel:  "sonar",
	}, zap.NewNop())
	p.baseURL = srv.URL
	return p
}

func TestExecuteSuccess(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer pplx-test-key-1234", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sonar", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "best running shoes")

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Nike and Brooks lead the pack."}},
			},
			"citations": []string{"https://runnersworld.com/review", "https://wirecutter.com/shoes"},
			"usage":     map[string]any{"total_tokens": 42},
		})
	})

	result := p.Execute(context.Background(), common.Request{
		Prompt:  "best running shoes",
		Context: "This query is related to Nike in the footwear category. Topic: running shoes.",
	})

	require.True(t, result.Success())
	assert.Equal(t, "Nike and Brooks lead the pack.", result.Data.Content)
	assert.Equal(t, 42, result.Data.TokenCount)
	assert.True(t, result.Data.RealTimeData)
	assert.True(t, result.Data.WebSearchUsed)
	require.Len(t, result.Data.Citations, 2)
	assert.Equal(t, "https://runnersworld.com/review", result.Data.Citations[0].URL)
	assert.Equal(t, "perplexity", result.Data.Citations[0].Source)
	assert.Greater(t, result.Cost, 0.0)
}

func TestExecuteEmptyPrompt(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be sent for an invalid prompt")
	})

	result := p.Execute(context.Background(), common.Request{})
	assert.False(t, result.Success())
	assert.Equal(t, "invalid request format", result.Err)
}

func TestExecuteAPIErrorIsEnveloped(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	})

	result := p.Execute(context.Background(), common.Request{Prompt: "anything"})
	assert.Equal(t, common.StatusError, result.Status)
	assert.Nil(t, result.Data)
	assert.Contains(t, result.Err, "429")
}

func TestExecuteEmptyChoices(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	result := p.Execute(context.Background(), common.Request{Prompt: "anything"})
	assert.False(t, result.Success())
	assert.Contains(t, result.Err, "empty response")
}
