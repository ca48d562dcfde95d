package tools

import (
	"context"
	"encoding/json"

	"github.com/cicidi/product-sales-prediction/internal/schema"
)

const ToolChatHistory = "chat_history"

var _ schema.Tool = (*ChatHistoryTool)(nil)

// ChatHistoryTool lets the reasoning engine read the whole conversation of
// the current session, beyond the recent window it is given by default.
type ChatHistoryTool struct{}

func NewChatHistoryTool() *ChatHistoryTool { return &ChatHistoryTool{} }

func (t *ChatHistoryTool) Name() string { return ToolChatHistory }

func (t *ChatHistoryTool) Description() string {
	return "Chat History: returns every earlier user message and assistant reply of this conversation, oldest first. " +
		"Use it when the user refers to something said earlier that is not in the recent messages."
}

func (t *ChatHistoryTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}

func (t *ChatHistoryTool) Execute(ctx context.Context, _ map[string]any) (string, error) {
	tc, ok := TurnCtx(ctx)
	if !ok || tc.History == nil {
		return "No conversation history is available.", nil
	}
	out := tc.History.FormattedHistory()
	if out == "" {
		return "The conversation has no earlier turns.", nil
	}
	return out, nil
}
