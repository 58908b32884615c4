package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/cv-builder/internal/llm"
)

// ParseList recovers a list of strings from a model response. A JSON array is
// used as is; a JSON object holding exactly one array is unwrapped. Anything
// else goes through FallbackList. The second return value reports whether the
// fallback was used.
func ParseList(raw string) ([]string, bool) {
	text := llm.StripCodeFence(raw)
	if list, ok := decodeList(llm.CleanJSONBlock(text)); ok {
		return list, false
	}
	return FallbackList(text), true
}

// FallbackList splits text on commas, or else returns it as a single item, or
// else returns an empty list.
func FallbackList(text string) []string {
	text = strings.TrimSpace(text)
	if strings.Contains(text, ",") {
		parts := strings.Split(text, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	if text != "" {
		return []string{text}
	}
	return []string{}
}

func decodeList(text string) ([]string, bool) {
	var items []any
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		return stringify(items), true
	}

	var wrapper map[string]any
	if err := json.Unmarshal([]byte(text), &wrapper); err == nil && len(wrapper) == 1 {
		for _, v := range wrapper {
			if arr, ok := v.([]any); ok {
				return stringify(arr), true
			}
		}
	}
	return nil, false
}

// stringify keeps strings and scalars, dropping nulls, nested values, and blanks.
func stringify(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case string:
			s = v
		case float64, bool:
			s = fmt.Sprint(v)
		default:
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
