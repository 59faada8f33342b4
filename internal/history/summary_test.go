package history_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/raysh454/courier/internal/history"
)

func TestSummarize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body any
		want string
	}{
		{"null", nil, "null"},
		{"object", map[string]any{"a": 1, "b": 2}, "object (2 keys)"},
		{"array", []any{1, 2, 3}, "array (3 items)"},
		{"number", json.Number("42"), "number 42"},
		{"boolean", true, "boolean true"},
		{"string", "hi", `string "hi"`},
		{"raw empty", map[string]any{"raw": ""}, "empty body"},
		{"raw text first line", map[string]any{"raw": "line one\nline two"}, "text line one"},
		{"raw html title", map[string]any{"raw": "<!DOCTYPE html><html><head><title> Example Domain </title></head></html>"}, "html Example Domain"},
		{"raw html without title", map[string]any{"raw": "<html><body>x</body></html>"}, "html document"},
		{"raw key with siblings is an object", map[string]any{"raw": "x", "y": 1}, "object (2 keys)"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := history.Summarize(tt.body); got != tt.want {
				t.Errorf("Summarize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarize_Truncates(t *testing.T) {
	t.Parallel()
	got := history.Summarize(map[string]any{"raw": strings.Repeat("x", 500)})
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected truncated summary, got %q", got)
	}
	if n := len([]rune(strings.TrimPrefix(got, "text "))); n != 80 {
		t.Errorf("expected 80 runes, got %d", n)
	}
}
