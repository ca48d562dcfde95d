package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/cicidi/product-sales-prediction/internal/schema"
)

var _ schema.LLMProvider = (*OpenAIProvider)(nil)
var _ schema.Completer = (*OpenAIProvider)(nil)

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	client       *openai.Client
	defaultModel string
	maxTokens    int
	logger       *slog.Logger
}

// NewOpenAIProvider constructs a provider. An empty apiBase targets api.openai.com.
func NewOpenAIProvider(apiKey, apiBase, defaultModel string, extraHeaders map[string]string, timeout time.Duration, logger *slog.Logger) *OpenAIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := openai.DefaultConfig(apiKey)
	if apiBase != "" {
		cfg.BaseURL = apiBase
	}
	cfg.HTTPClient = newHTTPClient(timeout, extraHeaders)

	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(cfg),
		defaultModel: defaultModel,
		maxTokens:    1024,
		logger:       logger,
	}
}

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

// Chat implements schema.LLMProvider.
func (p *OpenAIProvider) Chat(ctx context.Context, messages schema.Messages, tools []map[string]any, opts schema.ChatOptions) (schema.LLMResponse, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   maxTokens,
		Temperature: float32(opts.Temperature),
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
		req.ToolChoice = "auto"
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return schema.LLMResponse{}, describeOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return schema.LLMResponse{}, errors.New("no response from OpenAI")
	}

	choice := resp.Choices[0]
	out := schema.LLMResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: map[string]int{
			"input_tokens":  resp.Usage.PromptTokens,
			"output_tokens": resp.Usage.CompletionTokens,
		},
	}
	for _, tc := range choice.Message.ToolCalls {
		args, err := repairJSON(tc.Function.Arguments)
		if err != nil {
			p.logger.Warn("unparseable tool arguments", "tool", tc.Function.Name, "err", err)
		}
		out.ToolCalls = append(out.ToolCalls, schema.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}
	return out, nil
}

// Complete implements schema.Completer with a single user message.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	msgs := schema.NewMessages()
	msgs.AddUser(prompt)
	resp, err := p.Chat(ctx, msgs, nil, schema.NewChatOptions(p.defaultModel, 16, 0))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func toOpenAIMessages(messages schema.Messages) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, messages.Len())
	for _, m := range messages.Messages {
		msg := openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
		switch m.Role {
		case "assistant":
			for _, tc := range m.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: anyToJSON(tc.Arguments),
					},
				})
			}
		case "tool":
			msg.Role = openai.ChatMessageRoleTool
			msg.ToolCallID = m.ToolCallID
			msg.Name = m.ToolName
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(defs []map[string]any) []openai.Tool {
	out := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		name, desc, params, ok := toolFunction(def)
		if !ok {
			continue
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        name,
				Description: desc,
				Parameters:  params,
			},
		})
	}
	return out
}

func describeOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 {
			return fmt.Errorf("openai: rate limit exceeded: %w", err)
		}
		return fmt.Errorf("openai: HTTP %d: %w", apiErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("openai: %w", err)
}
