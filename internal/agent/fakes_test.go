package agent

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cicidi/product-sales-prediction/internal/memory"
	"github.com/cicidi/product-sales-prediction/internal/schema"
	"github.com/cicidi/product-sales-prediction/internal/tools"
)

// scriptedProvider replays responses in order and records every request.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []schema.LLMResponse
	errs      []error
	requests  []providerRequest
}

type providerRequest struct {
	messages []schema.Message
	tools    []map[string]any
}

func (p *scriptedProvider) Chat(_ context.Context, msgs schema.Messages, tools []map[string]any, _ schema.ChatOptions) (schema.LLMResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := len(p.requests)
	p.requests = append(p.requests, providerRequest{messages: msgs.Clone().Messages, tools: tools})

	if i < len(p.errs) && p.errs[i] != nil {
		return schema.LLMResponse{}, p.errs[i]
	}
	if i < len(p.responses) {
		return p.responses[i], nil
	}
	return p.responses[len(p.responses)-1], nil
}

func (p *scriptedProvider) DefaultModel() string { return "test-model" }

func (p *scriptedProvider) calls() []providerRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]providerRequest(nil), p.requests...)
}

func textReplies(texts ...string) *scriptedProvider {
	p := &scriptedProvider{}
	for _, t := range texts {
		p.responses = append(p.responses, schema.LLMResponse{Content: t, FinishReason: "stop"})
	}
	return p
}

// scriptedJudge returns verdicts in order, Sufficient once exhausted.
type scriptedJudge struct {
	mu       sync.Mutex
	verdicts []Verdict
	seen     []string
}

func (j *scriptedJudge) Judge(_ context.Context, reply string) Verdict {
	j.mu.Lock()
	defer j.mu.Unlock()
	i := len(j.seen)
	j.seen = append(j.seen, reply)
	if i < len(j.verdicts) {
		return j.verdicts[i]
	}
	return Sufficient
}

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type reasonerFunc func() (string, error)

func (f reasonerFunc) Reason(context.Context, []memory.Turn, string, *tools.ToolList) (string, error) {
	return f()
}

// echoTool returns its arguments as JSON.
type echoTool struct {
	mu    sync.Mutex
	calls []map[string]any
}

func (t *echoTool) Name() string        { return "echo" }
func (t *echoTool) Description() string { return "Echo: returns its input" }
func (t *echoTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"text":{"type":"string"}}}`)
}

func (t *echoTool) Execute(_ context.Context, args map[string]any) (string, error) {
	t.mu.Lock()
	t.calls = append(t.calls, args)
	t.mu.Unlock()
	b, _ := json.Marshal(args)
	return string(b), nil
}
