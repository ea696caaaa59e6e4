package common

import "strings"

// Cost per 1M tokens
var costPerToken = map[string]struct{ input, output float64 }{
	"gpt-4o":           {input: 2.50, output: 10.00},
	"gpt-4":            {input: 30.00, output: 60.00},
	"gpt-35-turbo":     {input: 0.50, output: 1.50},
	"gemini-1.5-flash": {input: 0.075, output: 0.30},
	"gemini-1.5-pro":   {input: 1.25, output: 5.00},
	"gemini-pro":       {input: 0.50, output: 1.50},
	"sonar":            {input: 1.00, output: 1.00}, // Perplexity Sonar pricing (estimated)
}

// Cost per 1000 web searches
var costPerWebSearch = map[string]float64{
	"openai":     35.00,
	"gemini":     35.00,
	"perplexity": 8.00,
}

// EstimateCost prices a call from the total token usage the providers
// report. Usage is not split into input/output by every provider, so a
// blended per-token rate is used.
func EstimateCost(provider, model string, totalTokens int, webSearch bool) float64 {
	rates, ok := costPerToken[model]
	if !ok {
		rates = costPerToken["gpt-4o"]
	}

	blended := (rates.input + rates.output) / 2.0
	total := (float64(totalTokens) / 1_000_000.0) * blended

	if webSearch {
		if searchCost, ok := costPerWebSearch[providerKey(provider)]; ok {
			total += searchCost / 1000.0
		}
	}

	return total
}

func providerKey(provider string) string {
	provider = strings.ToLower(provider)
	switch {
	case strings.Contains(provider, "openai") || strings.Contains(provider, "gpt") || strings.Contains(provider, "chatgpt"):
		return "openai"
	case strings.Contains(provider, "gemini") || strings.Contains(provider, "google"):
		return "gemini"
	case strings.Contains(provider, "perplexity") || strings.Contains(provider, "sonar"):
		return "perplexity"
	}
	return "openai"
}
