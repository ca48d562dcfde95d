// Package config defines the configuration schema for salesbot.
//
// JSON keys use camelCase. YAML files use the same keys.
package config

import (
	"path/filepath"

	agentcfg "github.com/cicidi/product-sales-prediction/internal/config/agent"
	"github.com/cicidi/product-sales-prediction/internal/config/gateway"
	"github.com/cicidi/product-sales-prediction/internal/config/provider"
	"github.com/cicidi/product-sales-prediction/internal/config/registry"
)

// MemoryConfig locates session history files and the optional thought store.
type MemoryConfig struct {
	Dir       string `json:"dir,omitempty"`
	ThoughtDB string `json:"thoughtDb,omitempty"`
}

// Config is the root configuration object, loaded from ~/.salesbot/config.json.
type Config struct {
	Registry  registry.RegistryConfig  `json:"registry"`
	Agents    agentcfg.AgentsConfig    `json:"agents"`
	Judge     agentcfg.JudgeConfig     `json:"judge"`
	Providers provider.ProvidersConfig `json:"providers"`
	Memory    MemoryConfig             `json:"memory"`
	Gateway   gateway.GatewayConfig    `json:"gateway"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Registry:  registry.DefaultRegistryConfig(),
		Agents:    agentcfg.DefaultAgentsConfig(),
		Judge:     agentcfg.DefaultJudgeConfig(),
		Providers: provider.DefaultProvidersConfig(),
		Gateway:   gateway.DefaultGatewayConfig(),
	}
}

// SessionsDir returns the directory holding session history files.
func (c *Config) SessionsDir() string {
	if c.Memory.Dir != "" {
		return expandHome(c.Memory.Dir)
	}
	return filepath.Join(DataDir(), "sessions")
}

// ThoughtDBPath returns the sqlite path for the thought store, or "" when disabled.
func (c *Config) ThoughtDBPath() string {
	if c.Memory.ThoughtDB == "" {
		return ""
	}
	return expandHome(c.Memory.ThoughtDB)
}
