package common

// ProviderType identifies one of the supported answer engines.
type ProviderType string

const (
	ProviderChatGPT    ProviderType = "chatgpt"
	ProviderGemini     ProviderType = "gemini"
	ProviderPerplexity ProviderType = "perplexity"
)

// Valid reports whether t names a supported provider.
func (t ProviderType) Valid() bool {
	switch t {
	case ProviderChatGPT, ProviderGemini, ProviderPerplexity:
		return true
	}
	return false
}
