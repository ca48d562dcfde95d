// Package invoker performs tool calls against the registry's execute endpoint.
package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cicidi/product-sales-prediction/internal/schema"
	"github.com/cicidi/product-sales-prediction/internal/shared/llmutils"
)

const (
	executePath  = "/api/mcp/execute"
	maxBodyBytes = 8 << 20

	DefaultTimeout = 15 * time.Second
)

// Invoker posts {toolName, parameters} envelopes to the registry. It never
// retries; retry policy belongs to the orchestrator.
type Invoker struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns an Invoker for the registry at baseURL. A zero timeout uses
// DefaultTimeout.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type executeRequest struct {
	ToolName   string         `json:"toolName"`
	Parameters map[string]any `json:"parameters"`
}

// Invoke executes toolName with already validated args. On success the body
// is returned pretty-printed when it is JSON and verbatim otherwise. Failures
// are *schema.ToolExecutionError values whose text is meant for the
// reasoning engine.
func (i *Invoker) Invoke(ctx context.Context, toolName string, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	payload, err := json.Marshal(executeRequest{ToolName: toolName, Parameters: args})
	if err != nil {
		return "", &schema.ToolExecutionError{
			Tool:    toolName,
			Message: fmt.Sprintf("Error executing tool %s: encode arguments: %v", toolName, err),
			Err:     err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+executePath, bytes.NewReader(payload))
	if err != nil {
		return "", &schema.ToolExecutionError{
			Tool:    toolName,
			Message: fmt.Sprintf("Error executing tool %s: %v", toolName, err),
			Err:     err,
		}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := i.httpClient.Do(req)
	if err != nil {
		i.logger.Warn("tool execute failed", "tool", toolName, "err", err)
		return "", &schema.ToolExecutionError{
			Tool:    toolName,
			Message: fmt.Sprintf("Error executing tool %s: %v", toolName, err),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &schema.ToolExecutionError{
			Tool:       toolName,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Error executing tool %s: read response: %v", toolName, err),
			Err:        err,
		}
	}

	i.logger.Debug("tool executed", "tool", toolName, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &schema.ToolExecutionError{
			Tool:       toolName,
			StatusCode: resp.StatusCode,
			Message: fmt.Sprintf("Error calling tool %s: HTTP %d - %s",
				toolName, resp.StatusCode, llmutils.Truncate(strings.TrimSpace(string(body)), 2000)),
		}
	}

	return formatBody(body), nil
}

// formatBody pretty-prints JSON bodies and returns anything else as text.
func formatBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "(empty response)"
	}
	if !json.Valid(trimmed) {
		return string(trimmed)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
