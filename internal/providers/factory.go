package providers

import (
	"log/slog"
	"time"

	"github.com/cicidi/product-sales-prediction/internal/config/provider"
	"github.com/cicidi/product-sales-prediction/internal/schema"
)

// Params are the raw values needed to construct a provider.
type Params struct {
	APIKey       string
	APIBase      string
	ExtraHeaders map[string]string
	DefaultModel string
	ProviderName string // "openai" | "anthropic"
	Timeout      time.Duration
}

// Model is both a reasoning engine and a plain completer.
type Model interface {
	schema.LLMProvider
	schema.Completer
}

// New creates the provider for p.ProviderName; unknown names get the
// OpenAI-compatible client.
func New(p Params, logger *slog.Logger) Model {
	if p.ProviderName == provider.ProviderAnthropic {
		return NewAnthropicProvider(p.APIKey, p.APIBase, p.DefaultModel, p.ExtraHeaders, p.Timeout, logger)
	}
	return NewOpenAIProvider(p.APIKey, p.APIBase, p.DefaultModel, p.ExtraHeaders, p.Timeout, logger)
}
