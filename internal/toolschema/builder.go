// Package toolschema turns registry tool descriptors into validated, callable
// tools for the reasoning engine.
package toolschema

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cicidi/product-sales-prediction/internal/registry"
	"github.com/cicidi/product-sales-prediction/internal/schema"
	"github.com/cicidi/product-sales-prediction/internal/shared/llmutils"
)

// Builder produces BoundTools that execute through one Invoker.
type Builder struct {
	invoker Invoker
	logger  *slog.Logger
}

func NewBuilder(inv Invoker, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if inv == nil {
		inv = invokerFunc(func(context.Context, string, map[string]any) (string, error) {
			return "", errNoInvoker
		})
	}
	return &Builder{invoker: inv, logger: logger}
}

// Build makes a BoundTool from desc. A descriptor without a name, or whose
// names sanitize to nothing, is rejected with schema.ErrMalformedDescriptor.
func (b *Builder) Build(desc registry.ToolDescriptor) (*BoundTool, error) {
	if desc.Name == "" {
		return nil, fmt.Errorf("%w: missing name (operationId %q)", schema.ErrMalformedDescriptor, desc.OperationID)
	}

	name := llmutils.SanitizeToolName(desc.OperationID)
	if name == "" {
		name = llmutils.SanitizeToolName(desc.Name)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no usable tool name in %q", schema.ErrMalformedDescriptor, desc.Name)
	}

	params := b.resolveParams(desc)

	raw, err := json.Marshal(parameterSchema(params))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: encode schema: %v", schema.ErrMalformedDescriptor, desc.Name, err)
	}

	validator, err := compileValidator(name, raw)
	if err != nil {
		b.logger.Warn("tool schema did not compile, validating presence only", "tool", name, "err", err)
		validator = nil
	}

	return &BoundTool{
		descriptor:  desc,
		name:        name,
		params:      params,
		description: describe(desc, params),
		parameters:  raw,
		validator:   validator,
		invoker:     b.invoker,
		logger:      b.logger,
	}, nil
}

// BuildAll builds every descriptor it can. Malformed descriptors and name
// collisions are logged and skipped; the rest are returned in input order.
func (b *Builder) BuildAll(descs []registry.ToolDescriptor) []*BoundTool {
	out := make([]*BoundTool, 0, len(descs))
	seen := make(map[string]bool, len(descs))

	for _, d := range descs {
		t, err := b.Build(d)
		if err != nil {
			b.logger.Warn("skipping tool", "err", err)
			continue
		}
		if seen[t.Name()] {
			b.logger.Warn("skipping tool with duplicate name", "tool", t.Name(), "registryName", d.Name)
			continue
		}
		seen[t.Name()] = true
		out = append(out, t)
		b.logger.Debug("tool bound", "tool", t.Name(), "params", len(t.params))
	}
	return out
}

func (b *Builder) resolveParams(desc registry.ToolDescriptor) []Param {
	params := make([]Param, 0, len(desc.Parameters))
	seen := make(map[string]bool, len(desc.Parameters))

	for _, p := range desc.Parameters {
		if p.Name == "" {
			b.logger.Warn("skipping unnamed parameter", "tool", desc.Name)
			continue
		}
		if seen[p.Name] {
			b.logger.Warn("skipping duplicate parameter", "tool", desc.Name, "param", p.Name)
			continue
		}
		seen[p.Name] = true

		kind, ok := KindOf(p.Type)
		if !ok {
			b.logger.Warn("unknown parameter type, treating as text", "tool", desc.Name, "param", p.Name, "type", p.Type)
		}
		if p.Required {
			p.DefaultValue = nil
		}
		if p.DefaultValue != nil {
			cv, err := kind.Coerce(p.DefaultValue)
			if err != nil {
				b.logger.Warn("dropping default that does not match parameter type",
					"tool", desc.Name, "param", p.Name, "type", p.Type, "default", p.DefaultValue, "err", err)
			}
			p.DefaultValue = cv
		}
		params = append(params, Param{ToolParameter: p, Kind: kind})
	}
	return params
}
