package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cicidi/product-sales-prediction/internal/config/provider"
	"github.com/cicidi/product-sales-prediction/internal/schema"
)

// captureServer answers every request on path with body and records request bodies.
type captureServer struct {
	*httptest.Server
	mu      sync.Mutex
	bodies  []map[string]any
	headers []http.Header
}

func newCaptureServer(t *testing.T, path, body string) *captureServer {
	t.Helper()
	cs := &captureServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		var m map[string]any
		_ = json.Unmarshal(raw, &m)
		cs.mu.Lock()
		cs.bodies = append(cs.bodies, m)
		cs.headers = append(cs.headers, r.Header.Clone())
		cs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *captureServer) last() (map[string]any, http.Header) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.bodies[len(cs.bodies)-1], cs.headers[len(cs.headers)-1]
}

func sampleTools() []map[string]any {
	return []map[string]any{{
		"type": "function",
		"function": map[string]any{
			"name":        "getProducts",
			"description": "Products: list products",
			"parameters": map[string]any{
				"type":       "object",
				"properties": map[string]any{"category": map[string]any{"type": "string"}},
				"required":   []any{"category"},
			},
		},
	}}
}

func TestOpenAIProvider_ChatParsesToolCalls(t *testing.T) {
	t.Parallel()
	srv := newCaptureServer(t, "/v1/chat/completions", `{
		"id": "c1", "object": "chat.completion", "model": "gpt-4o",
		"choices": [{"index": 0, "finish_reason": "tool_calls", "message": {
			"role": "assistant", "content": "",
			"tool_calls": [{"id": "call_1", "type": "function",
				"function": {"name": "getProducts", "arguments": "{\"category\": \"toys\"}"}}]
		}}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
	}`)

	p := NewOpenAIProvider("sk-test", srv.URL+"/v1", "gpt-4o", map[string]string{"X-Tenant": "acme"}, 0, nil)

	msgs := schema.NewMessages()
	msgs.AddSystem("system")
	msgs.AddUser("toys?")
	msgs.AddAssistant("", []schema.ToolCall{{ID: "prev", Name: "getProducts", Arguments: map[string]any{"category": "books"}}})
	msgs.AddToolResult("prev", "getProducts", `{"data":[]}`)

	resp, err := p.Chat(context.Background(), msgs, sampleTools(), schema.NewChatOptions("", 256, 0))
	require.NoError(t, err)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, schema.ToolCall{ID: "call_1", Name: "getProducts", Arguments: map[string]any{"category": "toys"}}, resp.ToolCalls[0])
	assert.Equal(t, 12, resp.Usage["input_tokens"])

	body, headers := srv.last()
	assert.Equal(t, "gpt-4o", body["model"])
	assert.Equal(t, "Bearer sk-test", headers.Get("Authorization"))
	assert.Equal(t, "acme", headers.Get("X-Tenant"))

	tools := body["tools"].([]any)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "getProducts", fn["name"])

	sent := body["messages"].([]any)
	require.Len(t, sent, 4)
	toolMsg := sent[3].(map[string]any)
	assert.Equal(t, "tool", toolMsg["role"])
	assert.Equal(t, "prev", toolMsg["tool_call_id"])
}

func TestOpenAIProvider_CompleteOmitsTools(t *testing.T) {
	t.Parallel()
	srv := newCaptureServer(t, "/v1/chat/completions", `{
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "False"}}]
	}`)

	p := NewOpenAIProvider("k", srv.URL+"/v1", "gpt-4o-mini", nil, 0, nil)
	out, err := p.Complete(context.Background(), "classify this")
	require.NoError(t, err)
	assert.Equal(t, "False", out)

	body, _ := srv.last()
	assert.NotContains(t, body, "tools")
	assert.Equal(t, "gpt-4o-mini", body["model"])
}

func TestAnthropicProvider_Complete(t *testing.T) {
	t.Parallel()
	srv := newCaptureServer(t, "/v1/messages", `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-3-5-haiku-latest",
		"content": [{"type": "text", "text": "True"}],
		"stop_reason": "end_turn", "stop_sequence": null,
		"usage": {"input_tokens": 20, "output_tokens": 1}
	}`)

	p := NewAnthropicProvider("ak", srv.URL, "claude-3-5-haiku-latest", nil, 0, nil)
	out, err := p.Complete(context.Background(), "Analyze the following response")
	require.NoError(t, err)
	assert.Equal(t, "True", out)

	body, headers := srv.last()
	assert.Equal(t, "claude-3-5-haiku-latest", body["model"])
	assert.Equal(t, "ak", headers.Get("X-Api-Key"))
}

func TestAnthropicProvider_ChatToolUse(t *testing.T) {
	t.Parallel()
	srv := newCaptureServer(t, "/v1/messages", `{
		"id": "msg_2", "type": "message", "role": "assistant", "model": "claude-3-5-sonnet-latest",
		"content": [
			{"type": "text", "text": "Looking that up."},
			{"type": "tool_use", "id": "tu_1", "name": "getProducts", "input": {"category": "toys"}}
		],
		"stop_reason": "tool_use", "stop_sequence": null,
		"usage": {"input_tokens": 30, "output_tokens": 10}
	}`)

	p := NewAnthropicProvider("ak", srv.URL, "claude-3-5-sonnet-latest", nil, 0, nil)
	msgs := schema.NewMessages()
	msgs.AddSystem("be brief")
	msgs.AddUser("toys?")

	resp, err := p.Chat(context.Background(), msgs, sampleTools(), schema.NewChatOptions("", 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "Looking that up.", resp.Content)
	assert.Equal(t, "tool_use", resp.FinishReason)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "tu_1", resp.ToolCalls[0].ID)
	assert.Equal(t, map[string]any{"category": "toys"}, resp.ToolCalls[0].Arguments)

	body, _ := srv.last()
	system := body["system"].([]any)
	assert.Equal(t, "be brief", system[0].(map[string]any)["text"])
	tools := body["tools"].([]any)
	require.Len(t, tools, 1)
	assert.Equal(t, "getProducts", tools[0].(map[string]any)["name"])
	assert.Len(t, body["messages"].([]any), 1)
}

func TestToAnthropicMessages_GroupsToolResults(t *testing.T) {
	t.Parallel()
	msgs := schema.NewMessages()
	msgs.AddUser("q")
	msgs.AddAssistant("", []schema.ToolCall{{ID: "a", Name: "x"}, {ID: "b", Name: "y"}})
	msgs.AddToolResult("a", "x", "1")
	msgs.AddToolResult("b", "y", "2")

	_, out := toAnthropicMessages(msgs)
	require.Len(t, out, 3)
	assert.Len(t, out[2].Content, 2)
}

func TestRepairJSON(t *testing.T) {
	t.Parallel()
	got, err := repairJSON(`{"category": "toys"}}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"category": "toys"}, got)

	got, err = repairJSON("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = repairJSON("not json")
	assert.Error(t, err)
}

func TestNew_SelectsBackend(t *testing.T) {
	t.Parallel()
	assert.IsType(t, &AnthropicProvider{}, New(Params{ProviderName: provider.ProviderAnthropic, DefaultModel: "claude-3-5-haiku-latest"}, nil))
	assert.IsType(t, &OpenAIProvider{}, New(Params{ProviderName: provider.ProviderOpenAI, DefaultModel: "gpt-4o"}, nil))
	assert.IsType(t, &OpenAIProvider{}, New(Params{ProviderName: "vllm"}, nil))
}
