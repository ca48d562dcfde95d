// Package providers adapts hosted language models to schema.LLMProvider and
// schema.Completer.
//
// The OpenAI provider speaks to any OpenAI-compatible endpoint through
// github.com/sashabaranov/go-openai; the Anthropic provider uses the official
// Messages API SDK.
package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single model request.
const DefaultTimeout = 60 * time.Second

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

func newHTTPClient(timeout time.Duration, headers map[string]string) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &http.Client{Timeout: timeout}
	if len(headers) > 0 {
		c.Transport = &headerTransport{base: http.DefaultTransport, headers: headers}
	}
	return c
}

// repairJSON attempts to unmarshal tool arguments, retrying after stripping
// trailing garbage. Some models emit truncated argument objects.
func repairJSON(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out, nil
	}

	stripped := strings.TrimRight(raw, " \t\n\r}]")
	if !strings.HasSuffix(stripped, "}") {
		stripped += "}"
	}
	if err := json.Unmarshal([]byte(stripped), &out); err == nil {
		return out, nil
	}

	if i := strings.LastIndex(raw, "}"); i >= 0 {
		if err := json.Unmarshal([]byte(raw[:i+1]), &out); err == nil {
			return out, nil
		}
	}

	return map[string]any{}, fmt.Errorf("cannot repair JSON: %s", raw)
}

// toolFunction extracts name, description and parameters from one tool
// definition in OpenAI function-calling format.
func toolFunction(def map[string]any) (name, description string, params map[string]any, ok bool) {
	fn, _ := def["function"].(map[string]any)
	if fn == nil {
		return "", "", nil, false
	}
	name, _ = fn["name"].(string)
	description, _ = fn["description"].(string)
	params, _ = fn["parameters"].(map[string]any)
	if params == nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return name, description, params, name != ""
}

func anyToJSON(v any) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
