package llmutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cicidi/product-sales-prediction/internal/schema"
)

var (
	reThink      = regexp.MustCompile(`(?s)<think>.*?</think>`)
	reUnsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	reUnderscore = regexp.MustCompile(`_+`)
)

// Truncate shortens a string to at most n runes, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// StripThink removes <think>…</think> blocks that some models embed.
func StripThink(s string) string {
	return strings.TrimSpace(reThink.ReplaceAllString(s, ""))
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// SanitizeToolName maps name onto the character set function-calling APIs
// accept: letters, digits, underscore and hyphen. Runs of underscores are
// collapsed and leading/trailing underscores trimmed.
func SanitizeToolName(name string) string {
	name = reUnsafeName.ReplaceAllString(name, "_")
	name = reUnderscore.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// ToolHint generates a short hint string for a list of tool calls, e.g. `getProducts("electronics")`.
func ToolHint(tcs []schema.ToolCall) string {
	parts := make([]string, 0, len(tcs))
	for _, tc := range tcs {
		var firstVal string
		for _, v := range tc.Arguments {
			if s, ok := v.(string); ok {
				firstVal = s
			}
			break
		}
		if firstVal == "" {
			parts = append(parts, tc.Name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%q)", tc.Name, Truncate(firstVal, 40)))
	}
	return strings.Join(parts, ", ")
}
