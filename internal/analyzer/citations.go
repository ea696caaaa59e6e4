// internal/analyzer/citations.go
package analyzer

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/TayyabArif/Firtz/internal/models"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	sourceNotePattern   = regexp.MustCompile(`\*\(source:\s*([^)]+)\)\*`)
	numberedRefPattern  = regexp.MustCompile(`\[(\d+)\]`)
	bareURLPattern      = regexp.MustCompile(`https?://[^\s)]+`)
)

// normalizeURL reduces a URL to origin+path so the same page cited with
// different query strings or fragments de-duplicates to one citation.
// Unparsable input falls back to the trimmed raw string.
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	return u.Scheme + "://" + u.Host + u.Path
}

// ExtractCitations pulls citations out of a provider response using
// layered strategies in priority order, unioned with normalized-URL
// de-duplication. Structured citation arrays returned directly by the
// provider are trusted first; the free-text patterns are best effort.
func ExtractCitations(provider Source, text string, structured []models.Citation) []models.Citation {
	if text == "" && len(structured) == 0 {
		return nil
	}

	var citations []models.Citation
	seen := make(map[string]bool)

	add := func(rawURL, label string) {
		rawURL = strings.TrimSpace(rawURL)
		if rawURL == "" {
			return
		}
		key := normalizeURL(rawURL)
		if seen[key] {
			return
		}
		seen[key] = true
		citations = append(citations, models.Citation{URL: rawURL, Text: label, Source: string(provider)})
	}

	// Strategy 1: structured citations from the provider payload.
	for _, c := range structured {
		label := c.Text
		if label == "" {
			label = c.URL
		}
		add(c.URL, label)
	}

	// Strategy 2: markdown [label](url) links in the free text.
	for _, m := range markdownLinkPattern.FindAllStringSubmatch(text, -1) {
		add(m[2], strings.TrimSpace(m[1]))
	}

	// Strategy 3: provider-specific fallback forms.
	if provider == SourceChatGPT {
		for _, m := range sourceNotePattern.FindAllStringSubmatch(text, -1) {
			u := strings.TrimSpace(m[1])
			add(u, u)
		}
	}

	// Numbered [n] references paired with the nth URL in the text.
	if provider == SourceChatGPT || provider == SourcePerplexity {
		refs := numberedRefPattern.FindAllStringSubmatch(text, -1)
		if len(refs) > 0 {
			urls := bareURLPattern.FindAllString(text, -1)
			for _, ref := range refs {
				n, err := strconv.Atoi(ref[1])
				if err != nil || n < 1 || n > len(urls) {
					continue
				}
				add(urls[n-1], "["+ref[1]+"]")
			}
		}
	}

	return citations
}
