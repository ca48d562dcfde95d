// Package registry talks to the remote tool registry: it lists tools, fetches
// per-tool parameter documents and probes registry health.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cicidi/product-sales-prediction/internal/schema"
	"github.com/cicidi/product-sales-prediction/internal/shared/llmutils"
)

const (
	toolsPath  = "/api/mcp/tools"
	statusPath = "/api/mcp/status"

	DefaultTimeout     = 15 * time.Second
	defaultConcurrency = 4
	maxBodyBytes       = 4 << 20
)

// Client is an HTTP client for the tool registry.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	logger      *slog.Logger
	concurrency int

	mu     sync.Mutex
	cached []ToolSummary
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (15s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithConcurrency bounds the number of detail requests in flight.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New returns a Client for the registry at baseURL.
func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		logger:      logger,
		concurrency: defaultConcurrency,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the registry root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// ListTools returns the registry's tool list. The last successful result is
// cached and returned until refresh is true.
func (c *Client) ListTools(ctx context.Context, refresh bool) ([]ToolSummary, error) {
	if !refresh {
		c.mu.Lock()
		cached := c.cached
		c.mu.Unlock()
		if cached != nil {
			return append([]ToolSummary(nil), cached...), nil
		}
	}

	body, err := c.get(ctx, toolsPath)
	if err != nil {
		return nil, err
	}
	data, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	var tools []ToolSummary
	if err := json.Unmarshal(data, &tools); err != nil {
		return nil, fmt.Errorf("%w: tool list data is not an array: %v", schema.ErrRegistryProtocol, err)
	}
	if tools == nil {
		tools = []ToolSummary{}
	}

	c.mu.Lock()
	c.cached = tools
	c.mu.Unlock()

	return append([]ToolSummary(nil), tools...), nil
}

// Invalidate drops the cached tool list.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}

// FetchToolDetail returns the full descriptor of one tool.
func (c *Client) FetchToolDetail(ctx context.Context, name string) (ToolDescriptor, error) {
	body, err := c.get(ctx, toolsPath+"/"+url.PathEscape(name))
	if err != nil {
		return ToolDescriptor{}, err
	}
	data, err := decodeEnvelope(body)
	if err != nil {
		return ToolDescriptor{}, err
	}

	var detail struct {
		Name        string `json:"name"`
		OperationID string `json:"operationId"`
		DisplayName string `json:"displayName"`
		Description string `json:"description"`
		Definition  *struct {
			Name        string          `json:"name"`
			DisplayName string          `json:"displayName"`
			Description string          `json:"description"`
			Parameters  []ToolParameter `json:"parameters"`
		} `json:"definition"`
		Parameters []ToolParameter `json:"parameters"`
	}
	if err := json.Unmarshal(data, &detail); err != nil {
		return ToolDescriptor{}, fmt.Errorf("%w: tool detail for %s: %v", schema.ErrRegistryProtocol, name, err)
	}

	desc := ToolDescriptor{
		Name:        llmutils.StringOrDefault(detail.Name, name),
		OperationID: detail.OperationID,
		DisplayName: detail.DisplayName,
		Description: detail.Description,
		Parameters:  detail.Parameters,
	}
	if def := detail.Definition; def != nil {
		desc.DisplayName = llmutils.StringOrDefault(desc.DisplayName, def.DisplayName)
		desc.Description = llmutils.StringOrDefault(desc.Description, def.Description)
		if def.Parameters != nil {
			desc.Parameters = def.Parameters
		}
	}
	desc.Parameters = normalizeParameters(desc.Parameters)
	return desc, nil
}

// ToolDetail is FetchToolDetail that never fails: errors are logged and the
// empty descriptor is returned so one bad tool does not stop a load.
func (c *Client) ToolDetail(ctx context.Context, name string) ToolDescriptor {
	desc, err := c.FetchToolDetail(ctx, name)
	if err != nil {
		c.logger.Warn("registry tool detail failed", "tool", name, "err", err)
		return ToolDescriptor{}
	}
	return desc
}

// Descriptors lists the registry tools and fetches every detail document,
// bounded by the configured concurrency. The result keeps list order. A tool
// whose detail could not be fetched is returned with no parameters.
func (c *Client) Descriptors(ctx context.Context, refresh bool) ([]ToolDescriptor, error) {
	summaries, err := c.ListTools(ctx, refresh)
	if err != nil {
		return nil, err
	}

	out := make([]ToolDescriptor, len(summaries))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, s := range summaries {
		out[i] = descriptorFromSummary(s)
		if s.Name == "" {
			continue
		}
		g.Go(func() error {
			detail := c.ToolDetail(ctx, s.Name)
			out[i].Parameters = detail.Parameters
			if out[i].DisplayName == "" {
				out[i].DisplayName = detail.DisplayName
			}
			if out[i].Description == "" {
				out[i].Description = detail.Description
			}
			if out[i].OperationID == "" {
				out[i].OperationID = detail.OperationID
			}
			return nil
		})
	}
	_ = g.Wait()

	c.logger.Info("registry tools loaded", "tools", len(out))
	return out, nil
}

// Status probes the registry health endpoint.
func (c *Client) Status(ctx context.Context) (Status, error) {
	body, err := c.get(ctx, statusPath)
	if err != nil {
		return Status{}, err
	}
	var raw struct {
		Status    *string `json:"status"`
		Version   string  `json:"version"`
		ToolCount int     `json:"toolCount"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Status{}, fmt.Errorf("%w: status: %v", schema.ErrRegistryProtocol, err)
	}
	if raw.Status == nil {
		return Status{}, fmt.Errorf("%w: status document has no status field", schema.ErrRegistryProtocol)
	}
	return Status{Status: *raw.Status, Version: raw.Version, ToolCount: raw.ToolCount}, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", schema.ErrRegistryUnavailable, path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", schema.ErrRegistryUnavailable, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: read body: %v", schema.ErrRegistryUnavailable, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: HTTP %d: %s", schema.ErrRegistryUnavailable, path,
			resp.StatusCode, llmutils.Truncate(strings.TrimSpace(string(body)), 300))
	}
	return body, nil
}

// decodeEnvelope unwraps {status:"success", data:...}.
func decodeEnvelope(body []byte) (json.RawMessage, error) {
	var env struct {
		Status *string         `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrRegistryProtocol, err)
	}
	if env.Status == nil {
		return nil, fmt.Errorf("%w: envelope has no status", schema.ErrRegistryProtocol)
	}
	if *env.Status != "success" {
		return nil, fmt.Errorf("%w: status %q: %s", schema.ErrRegistryProtocol, *env.Status, env.Error)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: envelope has no data", schema.ErrRegistryProtocol)
	}
	return env.Data, nil
}
