package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvOpenAIBase   = "OPENAI_BASE_URL"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvRegistryURL  = "SALESBOT_REGISTRY_URL"
)

// LoadEnv loads variables from the given .env files (default ".env") into the
// process environment. Missing files are ignored; existing variables win.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overlays environment variables onto cfg. Provider keys only fill
// empty fields; the registry URL always wins so deployments can repoint it.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvOpenAIKey); v != "" && c.Providers.OpenAI.APIKey == "" {
		c.Providers.OpenAI.APIKey = v
	}
	if v := os.Getenv(EnvOpenAIBase); v != "" && c.Providers.OpenAI.APIBase == "" {
		c.Providers.OpenAI.APIBase = v
	}
	if v := os.Getenv(EnvAnthropicKey); v != "" && c.Providers.Anthropic.APIKey == "" {
		c.Providers.Anthropic.APIKey = v
	}
	if v := os.Getenv(EnvRegistryURL); v != "" {
		c.Registry.BaseURL = v
	}
}
