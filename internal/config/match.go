package config

import (
	"strings"

	"github.com/cicidi/product-sales-prediction/internal/config/provider"
)

// MatchResult is the resolved provider config and bare model name for a model string.
type MatchResult struct {
	Provider *provider.ProviderConfig
	Name     string // "openai" | "anthropic"
	Model    string // model without the provider prefix
}

// MatchProvider resolves which provider serves model. An explicit
// "provider/" prefix wins; otherwise "claude" models go to Anthropic and
// everything else to the OpenAI-compatible endpoint.
// If model is empty, agents.defaults.model is used.
func (c *Config) MatchProvider(model string) MatchResult {
	if model == "" {
		model = c.Agents.Defaults.Model
	}

	name := provider.ProviderOpenAI
	bare := model
	if prefix, rest, ok := strings.Cut(model, "/"); ok {
		if p := c.Providers.ByName(strings.ToLower(prefix)); p != nil {
			return MatchResult{Provider: p, Name: strings.ToLower(prefix), Model: rest}
		}
	}
	if strings.Contains(strings.ToLower(model), "claude") {
		name = provider.ProviderAnthropic
	}
	return MatchResult{Provider: c.Providers.ByName(name), Name: name, Model: bare}
}
