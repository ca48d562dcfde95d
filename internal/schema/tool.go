package schema

import (
	"context"
	"encoding/json"
)

// Tool is anything the reasoning engine can call: registry-backed tools and
// the built-in chat history tool.
type Tool interface {
	// Name is the function name shown to the model.
	Name() string
	Description() string
	// Parameters returns the JSON Schema of the arguments object.
	Parameters() json.RawMessage
	Execute(ctx context.Context, params map[string]any) (string, error)
}
