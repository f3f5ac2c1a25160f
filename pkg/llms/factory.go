package llms

import (
	"os"

	"github.com/XiaoConstantine/evoidea-go/pkg/core"
	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
)

// NewProvider resolves a configured mode into a provider. Modes: "mock"
// for deterministic offline runs, "anthropic" for the real API (key from
// ANTHROPIC_API_KEY).
func NewProvider(mode, model string) (core.Provider, error) {
	switch mode {
	case "mock":
		return NewMockProvider(), nil
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, errors.New(errors.InvalidInput, "ANTHROPIC_API_KEY is not set")
		}
		return NewAnthropicProvider(apiKey, model)
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unsupported LLM mode"),
			errors.Fields{"mode": mode})
	}
}
