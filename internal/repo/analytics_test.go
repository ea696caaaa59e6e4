package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TayyabArif/Firtz/internal/models"
)

func TestMergeCompetitorStats(t *testing.T) {
	existing := map[string]models.CompetitorStats{
		"Adidas": {TotalMentions: 10, VisibilityScore: 40, TopProvider: "chatgpt", Domain: "adidas.com"},
		"Puma":   {TotalMentions: 3, VisibilityScore: 20, TopProvider: "gemini"},
	}
	incoming := map[string]models.CompetitorStats{
		"Adidas":      {TotalMentions: 5, VisibilityScore: 60, TopProvider: "perplexity"},
		"New Balance": {TotalMentions: 2, VisibilityScore: 15, TopProvider: "chatgpt", Domain: "newbalance.com"},
	}

	merged := mergeCompetitorStats(existing, incoming)

	require.Len(t, merged, 3)
	// Mentions accumulate, ratios reflect the latest session.
	assert.Equal(t, 15, merged["Adidas"].TotalMentions)
	assert.Equal(t, 60.0, merged["Adidas"].VisibilityScore)
	assert.Equal(t, "perplexity", merged["Adidas"].TopProvider)
	// Domain sticks when the new session has none.
	assert.Equal(t, "adidas.com", merged["Adidas"].Domain)
	// Untouched competitors are preserved.
	assert.Equal(t, 3, merged["Puma"].TotalMentions)
	// New competitors appear.
	assert.Equal(t, 2, merged["New Balance"].TotalMentions)
}

func TestMergeCompetitorStats_EmptyExisting(t *testing.T) {
	incoming := map[string]models.CompetitorStats{
		"Adidas": {TotalMentions: 1, VisibilityScore: 33.3},
	}
	merged := mergeCompetitorStats(nil, incoming)
	require.Len(t, merged, 1)
	assert.Equal(t, 1, merged["Adidas"].TotalMentions)
}
