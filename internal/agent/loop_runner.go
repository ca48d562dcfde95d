package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cicidi/product-sales-prediction/internal/memory"
	"github.com/cicidi/product-sales-prediction/internal/schema"
	"github.com/cicidi/product-sales-prediction/internal/shared/llmutils"
	"github.com/cicidi/product-sales-prediction/internal/tools"
)

const maxIterationsReply = "I've reached the maximum number of tool iterations without a final answer."

// Reasoner produces a reply for input given prior turns and the tools
// available this turn. Tool calls it makes are internal to one Reason call.
type Reasoner interface {
	Reason(ctx context.Context, history []memory.Turn, input string, tls *tools.ToolList) (string, error)
}

// LoopRunner executes the LLM ↔ tool iteration loop.
type LoopRunner struct {
	provider     schema.LLMProvider
	settings     schema.AgentSettings
	systemPrompt string
	logger       *slog.Logger
	onProgress   func(string)
}

// NewLoopRunner returns a Reasoner backed by provider. An empty systemPrompt
// selects DefaultSystemPrompt.
func NewLoopRunner(provider schema.LLMProvider, settings schema.AgentSettings, systemPrompt string, logger *slog.Logger) *LoopRunner {
	if logger == nil {
		logger = slog.Default()
	}
	if settings.MaxIter <= 0 {
		settings.MaxIter = 10
	}
	return &LoopRunner{
		provider:     provider,
		settings:     settings,
		systemPrompt: llmutils.StringOrDefault(systemPrompt, DefaultSystemPrompt),
		logger:       logger,
	}
}

// OnProgress registers a callback receiving tool hints while the loop runs.
func (r *LoopRunner) OnProgress(fn func(string)) { r.onProgress = fn }

func (r *LoopRunner) Reason(ctx context.Context, history []memory.Turn, input string, tls *tools.ToolList) (string, error) {
	conversation := schema.NewMessages()
	conversation.AddSystem(r.systemPrompt)
	for _, t := range history {
		conversation.AddUser(t.User)
		conversation.AddAssistant(t.Reply, nil)
	}
	conversation.AddUser(input)

	opts := schema.NewChatOptions(r.settings.Model, r.settings.MaxTokens, r.settings.Temperature)

	for i := 0; i < r.settings.MaxIter; i++ {
		resp, err := r.provider.Chat(ctx, conversation, tls.Definitions(), opts)
		if err != nil {
			r.logger.Error("LLM error", "err", err)
			return "", fmt.Errorf("reasoning engine: %w", err)
		}

		if !resp.HasToolCalls() {
			return llmutils.StripThink(resp.Content), nil
		}

		if r.onProgress != nil {
			if clean := llmutils.StripThink(resp.Content); clean != "" {
				r.onProgress(clean)
			}
			r.onProgress(llmutils.ToolHint(resp.ToolCalls))
		}

		conversation.AddAssistant(resp.Content, resp.ToolCalls)

		for _, tc := range resp.ToolCalls {
			argsJSON, _ := json.Marshal(tc.Arguments)
			r.logger.Info("Tool call", "name", tc.Name, "args", llmutils.Truncate(string(argsJSON), 200))

			// Tool failures go back to the engine as text so it can correct itself.
			var result string
			if t := tls.Get(tc.Name); t != nil {
				result, _ = t.Execute(ctx, tc.Arguments)
			} else {
				result = fmt.Sprintf("Error: Tool '%s' not found", tc.Name)
			}

			conversation.AddToolResult(tc.ID, tc.Name, result)
		}
	}

	r.logger.Warn("tool iteration limit reached", "limit", r.settings.MaxIter)
	return maxIterationsReply, nil
}
