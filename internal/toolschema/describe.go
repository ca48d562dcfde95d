package toolschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cicidi/product-sales-prediction/internal/registry"
	"github.com/cicidi/product-sales-prediction/internal/shared/llmutils"
)

// describe renders the text the reasoning engine reads to decide how to call
// a tool:
//
//	Display Name: description
//
//	Parameters:
//	- name (required|optional[, default: X][, example: Y]): description
func describe(desc registry.ToolDescriptor, params []Param) string {
	var b strings.Builder
	b.WriteString(llmutils.StringOrDefault(desc.DisplayName, desc.Name))
	b.WriteString(": ")
	b.WriteString(desc.Description)

	if len(params) == 0 {
		return b.String()
	}

	b.WriteString("\n\nParameters:")
	for _, p := range params {
		req := "optional"
		if p.Required {
			req = "required"
		}
		fmt.Fprintf(&b, "\n- %s (%s", p.Name, req)
		if p.HasDefault() {
			fmt.Fprintf(&b, ", default: %s", formatValue(p.DefaultValue))
		}
		if p.Example != nil {
			fmt.Fprintf(&b, ", example: %s", formatValue(p.Example))
		}
		fmt.Fprintf(&b, "): %s", p.Description)
	}
	return b.String()
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
