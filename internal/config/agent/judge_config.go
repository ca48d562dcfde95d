package agent

const (
	JudgeLLM     = "llm"
	JudgeKeyword = "keyword"
	JudgeOff     = "off"
)

// JudgeConfig selects how replies are classified for missing context.
// Model may carry a provider prefix ("anthropic/claude-3-5-haiku-latest");
// empty means the agent model is reused.
type JudgeConfig struct {
	Kind  string `json:"kind"`
	Model string `json:"model,omitempty"`
}

func DefaultJudgeConfig() JudgeConfig {
	return JudgeConfig{Kind: JudgeLLM}
}
