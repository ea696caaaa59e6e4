// services/aggregator.go
package services

import (
	"time"

	"github.com/TayyabArif/Firtz/internal/analyzer"
	"github.com/TayyabArif/Firtz/internal/models"
)

// AggregateBrandAnalytics folds one session's results into the
// per-session increments the analytics store adds onto its running
// totals. Counter fields here are increments, not totals.
func AggregateBrandAnalytics(brand *models.Brand, sessionID string, sessionTS time.Time, results []models.ProcessingResult) *models.BrandAnalytics {
	inc := &models.BrandAnalytics{
		UserID:               brand.UserID,
		BrandID:              brand.ID,
		BrandName:            brand.CompanyName,
		Domain:               brand.Domain,
		LastSessionID:        sessionID,
		LastSessionTimestamp: sessionTS,
		TotalQueries:         len(results),
		UpdatedAt:            time.Now().UTC(),
	}

	for _, result := range results {
		analysis := analyzer.AnalyzeBrandMentions(brand.CompanyName, brand.Domain, result.Results, brand.Competitors)

		inc.TotalBrandMentions += analysis.Totals.TotalBrandMentions
		inc.TotalDomainCitations += analysis.Totals.TotalDomainCitations
		inc.TotalCitations += analysis.Totals.TotalCitations
		if analysis.Totals.ProvidersWithBrandMention > 0 {
			inc.QueriesWithBrandMention++
		}
		if analysis.Totals.ProvidersWithDomainCitation > 0 {
			inc.QueriesWithDomainCitation++
		}

		for source, pa := range analysis.Results {
			if pa.BrandMentioned {
				bumpProvider(&inc.MentionsByProvider, source)
			}
			if pa.DomainCitationCount > 0 {
				bumpProviderBy(&inc.CitationsByProvider, source, pa.DomainCitationCount)
			}
		}
	}
	return inc
}

// AggregateCompetitorAnalytics folds one session's results into
// per-competitor increments. VisibilityScore is the share of queries
// in this session where the competitor appeared, and TopProvider the
// engine that mentioned it most.
func AggregateCompetitorAnalytics(brand *models.Brand, sessionID string, sessionTS time.Time, results []models.ProcessingResult) *models.CompetitorAnalytics {
	out := &models.CompetitorAnalytics{
		UserID:               brand.UserID,
		BrandID:              brand.ID,
		BrandName:            brand.CompanyName,
		Domain:               brand.Domain,
		LastSessionID:        sessionID,
		LastSessionTimestamp: sessionTS,
		Competitors:          make(map[string]models.CompetitorStats),
		UpdatedAt:            time.Now().UTC(),
	}
	if len(brand.Competitors) == 0 || len(results) == 0 {
		return out
	}

	type tally struct {
		mentions         int
		queriesAppearing int
		byProvider       map[analyzer.Source]int
	}
	tallies := make(map[string]*tally, len(brand.Competitors))
	for _, name := range brand.Competitors {
		tallies[name] = &tally{byProvider: make(map[analyzer.Source]int)}
	}

	for _, result := range results {
		appeared := make(map[string]bool)
		forEachProviderResult(result.Results, func(source analyzer.Source, pr *models.ProviderResult) {
			if pr == nil || pr.Response == "" {
				return
			}
			for _, name := range brand.Competitors {
				count := analyzer.CountBrandMentions(pr.Response, name)
				if count == 0 {
					continue
				}
				t := tallies[name]
				t.mentions += count
				t.byProvider[source] += count
				appeared[name] = true
			}
		})
		for name := range appeared {
			tallies[name].queriesAppearing++
		}
	}

	for name, t := range tallies {
		if t.mentions == 0 {
			continue
		}
		stats := models.CompetitorStats{
			TotalMentions:   t.mentions,
			VisibilityScore: float64(t.queriesAppearing) / float64(len(results)) * 100,
		}
		best := 0
		for source, count := range t.byProvider {
			if count > best || (count == best && stats.TopProvider == "") {
				best = count
				stats.TopProvider = string(source)
			}
		}
		out.Competitors[name] = stats
	}
	return out
}

func forEachProviderResult(set models.ProviderResultSet, fn func(analyzer.Source, *models.ProviderResult)) {
	fn(analyzer.SourceChatGPT, set.ChatGPT)
	fn(analyzer.SourceGemini, set.Gemini)
	fn(analyzer.SourcePerplexity, set.Perplexity)
}

func bumpProvider(counts *models.ProviderCounts, source analyzer.Source) {
	bumpProviderBy(counts, source, 1)
}

func bumpProviderBy(counts *models.ProviderCounts, source analyzer.Source, n int) {
	switch source {
	case analyzer.SourceChatGPT:
		counts.ChatGPT += n
	case analyzer.SourceGemini:
		counts.Gemini += n
	case analyzer.SourcePerplexity:
		counts.Perplexity += n
	}
}
