package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TayyabArif/Firtz/internal/models"
)

func ptr[T any](v T) *T { return &v }

func analysisResult(sessionID string, set models.ProviderResultSet) models.ProcessingResult {
	now := time.Now().UTC()
	return models.ProcessingResult{
		Date:                       now,
		ProcessingSessionID:        sessionID,
		ProcessingSessionTimestamp: now,
		Query:                      "best running shoes",
		Keyword:                    "running shoes",
		Category:                   "footwear",
		Results:                    set,
	}
}

func TestAggregateBrandAnalytics(t *testing.T) {
	brand := testBrand("best running shoes")
	results := []models.ProcessingResult{
		analysisResult("bg_1_a", models.ProviderResultSet{
			ChatGPT: &models.ProviderResult{
				Response: "Nike and Nike Air are popular.",
				Citations: []models.Citation{
					{URL: "https://nike.com/air", Text: "Nike Air"},
					{URL: "https://runrepeat.com", Text: "RunRepeat"},
				},
			},
			Gemini: &models.ProviderResult{Response: "Adidas leads in Europe."},
			Perplexity: &models.ProviderResult{
				Error: ptr("rate limited"),
			},
		}),
		analysisResult("bg_1_a", models.ProviderResultSet{
			ChatGPT: &models.ProviderResult{Response: "No brands worth naming."},
		}),
	}

	inc := AggregateBrandAnalytics(brand, "bg_1_a", time.Now(), results)

	assert.Equal(t, "bg_1_a", inc.LastSessionID)
	assert.Equal(t, 2, inc.TotalQueries)
	// "Nike" occurs twice in the chatgpt response ("Nike", "Nike Air").
	assert.Equal(t, 2, inc.TotalBrandMentions)
	// One citation URL carries the brand domain.
	assert.Equal(t, 1, inc.TotalDomainCitations)
	assert.Equal(t, 2, inc.TotalCitations)
	// Only the first query mentioned the brand on any provider.
	assert.Equal(t, 1, inc.QueriesWithBrandMention)
	assert.Equal(t, 1, inc.QueriesWithDomainCitation)
	assert.Equal(t, 1, inc.MentionsByProvider.ChatGPT)
	assert.Equal(t, 0, inc.MentionsByProvider.Gemini)
	assert.Equal(t, 1, inc.CitationsByProvider.ChatGPT)
}

func TestAggregateBrandAnalyticsEmptySession(t *testing.T) {
	brand := testBrand()
	inc := AggregateBrandAnalytics(brand, "bg_2_b", time.Now(), nil)
	assert.Equal(t, 0, inc.TotalQueries)
	assert.Equal(t, 0, inc.TotalBrandMentions)
}

func TestAggregateCompetitorAnalytics(t *testing.T) {
	brand := testBrand("best running shoes")
	results := []models.ProcessingResult{
		analysisResult("bg_3_c", models.ProviderResultSet{
			ChatGPT: &models.ProviderResult{Response: "Adidas and Adidas Boost beat Puma here."},
			Gemini:  &models.ProviderResult{Response: "Adidas is strong."},
		}),
		analysisResult("bg_3_c", models.ProviderResultSet{
			ChatGPT: &models.ProviderResult{Response: "Nothing relevant."},
		}),
	}

	inc := AggregateCompetitorAnalytics(brand, "bg_3_c", time.Now(), results)

	require.Contains(t, inc.Competitors, "Adidas")
	adidas := inc.Competitors["Adidas"]
	// Two occurrences on chatgpt plus one on gemini.
	assert.Equal(t, 3, adidas.TotalMentions)
	// Appeared in one of two queries.
	assert.InDelta(t, 50.0, adidas.VisibilityScore, 1e-9)
	assert.Equal(t, "chatgpt", adidas.TopProvider)

	require.Contains(t, inc.Competitors, "Puma")
	assert.Equal(t, 1, inc.Competitors["Puma"].TotalMentions)

	// Unmentioned competitors stay absent rather than appearing with
	// zero counts.
	assert.Len(t, inc.Competitors, 2)
}

func TestAggregateCompetitorAnalyticsNoCompetitors(t *testing.T) {
	brand := testBrand("q")
	brand.Competitors = nil
	inc := AggregateCompetitorAnalytics(brand, "bg_4_d", time.Now(), []models.ProcessingResult{
		analysisResult("bg_4_d", successfulSet("Adidas everywhere")),
	})
	assert.Empty(t, inc.Competitors)
}
