package agent

type AgentDefaults struct {
	Model        string  `json:"model"`
	MaxTokens    int     `json:"maxTokens"`
	Temperature  float64 `json:"temperature"`
	MaxToolIter  int     `json:"maxToolIterations"`
	MemoryWindow int     `json:"memoryWindow"`
	// Locale selects the apology template used for failed turns ("en", "zh").
	Locale       string `json:"locale"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

type AgentsConfig struct {
	Defaults AgentDefaults `json:"defaults"`
}

func defaultAgentDefaults() AgentDefaults {
	return AgentDefaults{
		Model:        "openai/gpt-4o",
		MaxTokens:    2048,
		Temperature:  0,
		MaxToolIter:  10,
		MemoryWindow: 10,
		Locale:       "en",
	}
}

func DefaultAgentsConfig() AgentsConfig {
	return AgentsConfig{Defaults: defaultAgentDefaults()}
}
