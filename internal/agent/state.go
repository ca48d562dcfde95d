package agent

// State is the orchestrator's position within one user turn.
type State int

const (
	StateIdle State = iota
	StateReasoning
	StateContextCheck
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReasoning:
		return "reasoning"
	case StateContextCheck:
		return "context_check"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Observer is notified on every state transition. enriched is true while the
// second, history-enriched reasoning pass runs.
type Observer func(s State, enriched bool)
