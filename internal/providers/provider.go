package providers

import (
	"context"

	"github.com/TayyabArif/Firtz/internal/providers/common"
)

// Type identifies one of the supported answer engines.
type Type = common.ProviderType

const (
	TypeChatGPT    = common.ProviderChatGPT
	TypeGemini     = common.ProviderGemini
	TypePerplexity = common.ProviderPerplexity
)

// All returns the provider set in dispatch order.
func All() []Type {
	return []Type{TypeChatGPT, TypeGemini, TypePerplexity}
}

// Adapter is the contract every answer-engine integration satisfies.
// Execute never returns a Go error; provider-level failures come back
// inside the Result envelope so one bad engine cannot abort a fan-out.
type Adapter interface {
	Type() Type
	Execute(ctx context.Context, req common.Request) common.Result
}
