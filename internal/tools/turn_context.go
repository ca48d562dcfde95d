package tools

import (
	"context"
)

// HistoryReader exposes a session's conversation to tools.
type HistoryReader interface {
	FormattedHistory() string
}

// TurnContext carries per-turn session data through the context tree.
// It is set by the orchestrator once per user turn and read by stateful
// tools inside Execute.
type TurnContext struct {
	SessionID string
	History   HistoryReader
}

type turnKey struct{}

// WithTurn returns a child context that carries tc.
func WithTurn(ctx context.Context, tc TurnContext) context.Context {
	return context.WithValue(ctx, turnKey{}, tc)
}

// TurnCtx extracts the TurnContext from ctx.
func TurnCtx(ctx context.Context) (TurnContext, bool) {
	tc, ok := ctx.Value(turnKey{}).(TurnContext)
	return tc, ok
}
