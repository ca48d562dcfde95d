package tools

import (
	"encoding/json"

	"github.com/cicidi/product-sales-prediction/internal/schema"
)

// ToolList holds an ordered, named set of tools and exposes them for LLM calls.
// A ToolList is not modified after it has been handed to a Set.
type ToolList struct {
	order []string
	tools map[string]schema.Tool
}

// NewToolList returns a list of ts in order. A later tool with an already
// used name replaces the earlier one in place.
func NewToolList(ts ...schema.Tool) *ToolList {
	list := &ToolList{tools: make(map[string]schema.Tool, len(ts))}
	for _, t := range ts {
		list.Add(t)
	}
	return list
}

// Get returns the tool with the given name, or nil if not found.
func (r *ToolList) Get(name string) schema.Tool {
	if r == nil {
		return nil
	}
	return r.tools[name]
}

// Add registers a new tool, replacing any existing tool with the same name.
func (r *ToolList) Add(t schema.Tool) schema.Tool {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t

	return t
}

// With returns a new list holding r's tools followed by extra.
func (r *ToolList) With(extra ...schema.Tool) *ToolList {
	out := NewToolList(r.All()...)
	for _, t := range extra {
		out.Add(t)
	}
	return out
}

// All returns the tools in registration order.
func (r *ToolList) All() []schema.Tool {
	if r == nil {
		return nil
	}
	out := make([]schema.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns the tool names in registration order.
func (r *ToolList) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

func (r *ToolList) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Definitions returns all tool definitions in OpenAI function-calling format.
func (r *ToolList) Definitions() []map[string]any {
	list := make([]map[string]any, 0, r.Len())
	for _, t := range r.All() {
		var params any
		if err := json.Unmarshal(t.Parameters(), &params); err != nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		list = append(list, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name(),
				"description": t.Description(),
				"parameters":  params,
			},
		})
	}
	return list
}
