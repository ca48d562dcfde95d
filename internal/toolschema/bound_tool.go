package toolschema

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	santhosh "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/cicidi/product-sales-prediction/internal/registry"
	"github.com/cicidi/product-sales-prediction/internal/schema"
)

// Invoker performs the remote call for a prepared argument set.
type Invoker interface {
	Invoke(ctx context.Context, toolName string, args map[string]any) (string, error)
}

// Param is a registry parameter resolved to its native Kind.
type Param struct {
	registry.ToolParameter
	Kind Kind
}

var _ schema.Tool = (*BoundTool)(nil)

// BoundTool is a registry tool made callable: it validates arguments locally
// and only then asks the Invoker to execute it. BoundTools are built once per
// registry snapshot and shared by all sessions.
type BoundTool struct {
	descriptor  registry.ToolDescriptor
	name        string
	params      []Param
	description string
	parameters  json.RawMessage
	validator   *santhosh.Schema
	invoker     Invoker
	logger      *slog.Logger
}

// Name is the sanitized operation id the reasoning engine calls the tool by.
func (t *BoundTool) Name() string { return t.name }

func (t *BoundTool) Description() string { return t.description }

// Parameters returns the JSON Schema for the tool's arguments.
func (t *BoundTool) Parameters() json.RawMessage { return t.parameters }

// Descriptor returns the registry descriptor the tool was built from.
func (t *BoundTool) Descriptor() registry.ToolDescriptor { return t.descriptor }

// Params returns the resolved parameters in declaration order.
func (t *BoundTool) Params() []Param { return append([]Param(nil), t.params...) }

// Prepare turns caller arguments into the outgoing argument set:
// required parameters must be present, absent optional parameters take their
// default or are left out entirely, present values are coerced to their kind
// and the result is validated against the tool schema. No network I/O.
func (t *BoundTool) Prepare(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(t.params))

	for _, p := range t.params {
		v, ok := args[p.Name]
		if !ok || v == nil {
			switch {
			case p.Required:
				return nil, &schema.MissingParameterError{Tool: t.name, Param: p.Name}
			case p.HasDefault():
				out[p.Name] = p.DefaultValue
			}
			continue
		}

		cv, err := p.Kind.Coerce(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", schema.ErrInvalidArgument, t.name, p.Name, err)
		}
		out[p.Name] = cv
	}

	if extra := t.unknownKeys(args); len(extra) > 0 {
		t.logger.Debug("dropping undeclared tool arguments", "tool", t.name, "keys", extra)
	}

	if t.validator != nil {
		if err := validateArgs(t.validator, out); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", schema.ErrInvalidArgument, t.name, err)
		}
	}
	return out, nil
}

// Execute implements schema.Tool. The returned string is always readable by
// the reasoning engine: on failure it is the error text, and err carries the
// typed error for callers that inspect it.
func (t *BoundTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	prepared, err := t.Prepare(args)
	if err != nil {
		return "Error: " + err.Error(), err
	}
	result, err := t.invoker.Invoke(ctx, t.descriptor.Name, prepared)
	if err != nil {
		return err.Error(), err
	}
	return result, nil
}

func (t *BoundTool) unknownKeys(args map[string]any) []string {
	var extra []string
	for k := range args {
		known := false
		for _, p := range t.params {
			if p.Name == k {
				known = true
				break
			}
		}
		if !known {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}
