package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cicidi/product-sales-prediction/internal/schema"
	"github.com/cicidi/product-sales-prediction/internal/tools"
)

func TestLoopRunner_ExecutesToolsAndFeedsResultsBack(t *testing.T) {
	t.Parallel()
	echo := &echoTool{}
	provider := &scriptedProvider{responses: []schema.LLMResponse{
		{ToolCalls: []schema.ToolCall{
			{ID: "c1", Name: "echo", Arguments: map[string]any{"text": "hi"}},
			{ID: "c2", Name: "missing"},
		}},
		{Content: "<think>done</think>Final answer"},
	}}

	reply, err := newRunner(provider).Reason(context.Background(), nil, "go", tools.NewToolList(echo))
	require.NoError(t, err)
	assert.Equal(t, "Final answer", reply)

	require.Len(t, echo.calls, 1)
	assert.Equal(t, map[string]any{"text": "hi"}, echo.calls[0])

	calls := provider.calls()
	require.Len(t, calls, 2)
	msgs := calls[1].messages
	require.Len(t, msgs, 5)
	assert.Equal(t, "assistant", msgs[2].Role)
	assert.Len(t, msgs[2].ToolCalls, 2)

	assert.Equal(t, "c1", msgs[3].ToolCallID)
	assert.JSONEq(t, `{"text":"hi"}`, msgs[3].Content)
	assert.Equal(t, "c2", msgs[4].ToolCallID)
	assert.Equal(t, "Error: Tool 'missing' not found", msgs[4].Content)
}

func TestLoopRunner_IterationLimit(t *testing.T) {
	t.Parallel()
	provider := &scriptedProvider{responses: []schema.LLMResponse{
		{ToolCalls: []schema.ToolCall{{ID: "c", Name: "echo"}}},
	}}
	r := NewLoopRunner(provider, schema.NewAgentSettings("m", 3, 0, 100), "", nil)

	reply, err := r.Reason(context.Background(), nil, "loop", tools.NewToolList(&echoTool{}))
	require.NoError(t, err)
	assert.Equal(t, maxIterationsReply, reply)
	assert.Len(t, provider.calls(), 3)
}

func TestLoopRunner_DefaultSystemPromptAndProgress(t *testing.T) {
	t.Parallel()
	provider := &scriptedProvider{responses: []schema.LLMResponse{
		{Content: "checking", ToolCalls: []schema.ToolCall{{ID: "c", Name: "echo", Arguments: map[string]any{"text": "abc"}}}},
		{Content: "done"},
	}}
	r := NewLoopRunner(provider, schema.AgentSettings{Model: "m"}, "", nil)

	var progress []string
	r.OnProgress(func(s string) { progress = append(progress, s) })

	_, err := r.Reason(context.Background(), nil, "q", tools.NewToolList(&echoTool{}))
	require.NoError(t, err)
	assert.Equal(t, DefaultSystemPrompt, provider.calls()[0].messages[0].Content)
	assert.Equal(t, []string{"checking", `echo("abc")`}, progress)
}
