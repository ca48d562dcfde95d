package schema

// AgentSettings configures one reasoning pass. MaxIter bounds the number of
// model calls a single pass may spend on tool use.
type AgentSettings struct {
	Model       string
	MaxIter     int
	Temperature float64
	MaxTokens   int
}

func NewAgentSettings(model string, maxIter int, temperature float64, maxTokens int) AgentSettings {
	return AgentSettings{Model: model, MaxIter: maxIter, Temperature: temperature, MaxTokens: maxTokens}
}
