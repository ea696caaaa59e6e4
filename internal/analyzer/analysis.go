// internal/analyzer/analysis.go
package analyzer

import "github.com/TayyabArif/Firtz/internal/models"

// ProviderAnalysis is the per-provider breakdown for one query.
type ProviderAnalysis struct {
	Provider                Source            `json:"provider"`
	BrandMentioned          bool              `json:"brandMentioned"`
	DomainCited             bool              `json:"domainCited"`
	CitationCount           int               `json:"citationCount"`
	Citations               []models.Citation `json:"citations"`
	BrandMentionCount       int               `json:"brandMentionCount"`
	DomainCitationCount     int               `json:"domainCitationCount"`
	CompetitorMentioned     bool              `json:"competitorMentioned"`
	CompetitorCited         bool              `json:"competitorCited"`
	CompetitorMentionCount  int               `json:"competitorMentionCount"`
	CompetitorCitationCount int               `json:"competitorCitationCount"`
}

// Totals aggregates the per-provider analyses for one query.
type Totals struct {
	TotalCitations                 int `json:"totalCitations"`
	TotalBrandMentions             int `json:"totalBrandMentions"`
	TotalDomainCitations           int `json:"totalDomainCitations"`
	TotalCompetitorMentions        int `json:"totalCompetitorMentions"`
	TotalCompetitorCitations       int `json:"totalCompetitorCitations"`
	ProvidersWithBrandMention      int `json:"providersWithBrandMention"`
	ProvidersWithDomainCitation    int `json:"providersWithDomainCitation"`
	ProvidersWithCompetitorMention int `json:"providersWithCompetitorMention"`
	ProvidersWithCompetitorCited   int `json:"providersWithCompetitorCitation"`
}

// BrandMentionAnalysis is the full cross-provider analysis of one query.
type BrandMentionAnalysis struct {
	BrandName   string                       `json:"brandName"`
	BrandDomain string                       `json:"brandDomain"`
	Competitors []string                     `json:"competitors"`
	Results     map[Source]*ProviderAnalysis `json:"results"`
	Totals      Totals                       `json:"totals"`
}

// AnalyzeBrandMentions runs the full mention/citation analysis of one
// query's results across all providers. Providers without a response
// are absent from Results.
func AnalyzeBrandMentions(brandName, brandDomain string, results models.ProviderResultSet, competitorNames []string) *BrandMentionAnalysis {
	competitors := make([]models.Competitor, 0, len(competitorNames))
	for _, name := range competitorNames {
		competitors = append(competitors, models.Competitor{Name: name})
	}

	analysis := &BrandMentionAnalysis{
		BrandName:   brandName,
		BrandDomain: brandDomain,
		Competitors: competitorNames,
		Results:     make(map[Source]*ProviderAnalysis),
	}

	analyze := func(source Source, result *models.ProviderResult) {
		if result == nil || result.Response == "" {
			return
		}
		pa := &ProviderAnalysis{
			Provider:                source,
			BrandMentioned:          IsBrandMentioned(result.Response, brandName),
			DomainCited:             IsDomainCited(result.Response, brandDomain),
			CitationCount:           len(result.Citations),
			Citations:               result.Citations,
			BrandMentionCount:       CountBrandMentions(result.Response, brandName),
			DomainCitationCount:     CountDomainCitations(result.Citations, brandDomain),
			CompetitorMentioned:     AreCompetitorsMentioned(result.Response, competitors),
			CompetitorCited:         AreCompetitorsCited(result.Citations, competitors),
			CompetitorMentionCount:  CountCompetitorMentions(result.Response, competitors),
			CompetitorCitationCount: CountCompetitorCitations(result.Citations, competitors),
		}
		analysis.Results[source] = pa
	}

	analyze(SourceChatGPT, results.ChatGPT)
	analyze(SourceGemini, results.Gemini)
	analyze(SourcePerplexity, results.Perplexity)

	for _, pa := range analysis.Results {
		analysis.Totals.TotalCitations += pa.CitationCount
		analysis.Totals.TotalBrandMentions += pa.BrandMentionCount
		analysis.Totals.TotalDomainCitations += pa.DomainCitationCount
		analysis.Totals.TotalCompetitorMentions += pa.CompetitorMentionCount
		analysis.Totals.TotalCompetitorCitations += pa.CompetitorCitationCount
		if pa.BrandMentioned {
			analysis.Totals.ProvidersWithBrandMention++
		}
		if pa.DomainCited {
			analysis.Totals.ProvidersWithDomainCitation++
		}
		if pa.CompetitorMentioned {
			analysis.Totals.ProvidersWithCompetitorMention++
		}
		if pa.CompetitorCited {
			analysis.Totals.ProvidersWithCompetitorCited++
		}
	}

	return analysis
}
