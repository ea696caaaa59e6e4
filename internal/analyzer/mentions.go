// internal/analyzer/mentions.go
package analyzer

import (
	"regexp"
	"strings"

	"github.com/TayyabArif/Firtz/internal/models"
)

// Source identifies which answer engine produced a piece of text.
type Source string

const (
	SourceChatGPT    Source = "chatgpt"
	SourceGemini     Source = "gemini"
	SourcePerplexity Source = "perplexity"
)

// IsBrandMentioned reports whether the brand name occurs in the text,
// case-insensitively. Empty text or name is never a mention.
func IsBrandMentioned(text, brandName string) bool {
	if text == "" || brandName == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(brandName))
}

// IsDomainCited reports whether the brand domain appears with an https
// scheme prefix. A bare domain without the scheme is not counted; this
// trades recall for precision against coincidental word matches.
func IsDomainCited(text, brandDomain string) bool {
	if text == "" || brandDomain == "" {
		return false
	}
	lowerText := strings.ToLower(text)
	lowerDomain := strings.ToLower(brandDomain)
	if strings.Contains(lowerText, "https://www."+lowerDomain) {
		return true
	}
	return strings.Contains(lowerText, "https://"+lowerDomain)
}

// CountBrandMentions counts case-insensitive occurrences of the brand
// name, escaping regex metacharacters in the name first.
func CountBrandMentions(text, brandName string) int {
	if text == "" || brandName == "" {
		return 0
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(brandName))
	if err != nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

// CountDomainCitations counts citations whose URL carries the brand
// domain behind an https scheme.
func CountDomainCitations(citations []models.Citation, brandDomain string) int {
	if brandDomain == "" {
		return 0
	}
	lowerDomain := strings.ToLower(brandDomain)
	count := 0
	for _, c := range citations {
		lowerURL := strings.ToLower(c.URL)
		if strings.Contains(lowerURL, "https://www."+lowerDomain) || strings.Contains(lowerURL, "https://"+lowerDomain) {
			count++
		}
	}
	return count
}

// MatchCompetitors returns the names of competitors whose name, any
// alias, or domain appears in the text. The result is de-duplicated by
// competitor name, so three matching aliases still yield one entry.
func MatchCompetitors(text string, competitors []models.Competitor) []string {
	if text == "" || len(competitors) == 0 {
		return nil
	}
	lowerText := strings.ToLower(text)

	var matches []string
	seen := make(map[string]bool)
	record := func(name string) {
		if !seen[name] {
			seen[name] = true
			matches = append(matches, name)
		}
	}

	for _, comp := range competitors {
		if comp.Name != "" && strings.Contains(lowerText, strings.ToLower(comp.Name)) {
			record(comp.Name)
		}
		for _, alias := range comp.Aliases {
			if alias != "" && strings.Contains(lowerText, strings.ToLower(alias)) {
				record(comp.Name)
			}
		}
		if comp.Domain != "" && strings.Contains(lowerText, strings.ToLower(comp.Domain)) {
			record(comp.Name)
		}
	}
	return matches
}

// AreCompetitorsMentioned reports whether any competitor name matches.
func AreCompetitorsMentioned(text string, competitors []models.Competitor) bool {
	return len(MatchCompetitors(text, competitors)) > 0
}

// CountCompetitorMentions sums occurrence counts across all competitor
// names and aliases, so one competitor matched via two aliases
// contributes at least two.
func CountCompetitorMentions(text string, competitors []models.Competitor) int {
	if text == "" || len(competitors) == 0 {
		return 0
	}
	total := 0
	for _, comp := range competitors {
		total += CountBrandMentions(text, comp.Name)
		for _, alias := range comp.Aliases {
			total += CountBrandMentions(text, alias)
		}
	}
	return total
}

// AreCompetitorsCited reports whether any citation URL or label carries
// a competitor name.
func AreCompetitorsCited(citations []models.Citation, competitors []models.Competitor) bool {
	return CountCompetitorCitations(citations, competitors) > 0
}

// CountCompetitorCitations counts citations whose URL or label contains
// any competitor name, case-insensitively.
func CountCompetitorCitations(citations []models.Citation, competitors []models.Competitor) int {
	if len(citations) == 0 || len(competitors) == 0 {
		return 0
	}
	count := 0
	for _, citation := range citations {
		lowerURL := strings.ToLower(citation.URL)
		lowerText := strings.ToLower(citation.Text)
		for _, comp := range competitors {
			lowerName := strings.ToLower(comp.Name)
			if lowerName == "" {
				continue
			}
			if strings.Contains(lowerURL, lowerName) || strings.Contains(lowerText, lowerName) {
				count++
				break
			}
		}
	}
	return count
}
