package registry

// RegistryConfig points at the remote tool registry.
type RegistryConfig struct {
	BaseURL           string `json:"baseUrl"`
	TimeoutSeconds    int    `json:"timeoutSeconds"`
	DetailConcurrency int    `json:"detailConcurrency"`
	// RefreshCron is a robfig/cron spec for re-reading the registry while the
	// gateway runs. Empty disables scheduled refresh.
	RefreshCron string `json:"refreshCron"`
}

func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		BaseURL:           "http://localhost:8080",
		TimeoutSeconds:    15,
		DetailConcurrency: 4,
		RefreshCron:       "@every 10m",
	}
}
