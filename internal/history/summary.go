package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxSummaryLen = 80

// Summarize describes a normalized response body in one short line: the
// shape of a JSON document, the <title> of an HTML page, or the start of
// any other text.
func Summarize(body any) string {
	switch v := body.(type) {
	case nil:
		return "null"
	case map[string]any:
		if raw, ok := rawText(v); ok {
			return summarizeText(raw)
		}
		return fmt.Sprintf("object (%d keys)", len(v))
	case []any:
		return fmt.Sprintf("array (%d items)", len(v))
	case string:
		return "string " + truncate(fmt.Sprintf("%q", v))
	case json.Number:
		return "number " + v.String()
	case float64:
		return fmt.Sprintf("number %v", v)
	case bool:
		return fmt.Sprintf("boolean %t", v)
	default:
		return fmt.Sprintf("%T", v)
	}
}

func rawText(m map[string]any) (string, bool) {
	if len(m) != 1 {
		return "", false
	}
	s, ok := m["raw"].(string)
	return s, ok
}

func summarizeText(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "empty body"
	}
	if looksLikeHTML(trimmed) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
		if err == nil {
			if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
				return "html " + truncate(title)
			}
		}
		return "html document"
	}
	if i := strings.IndexAny(trimmed, "\r\n"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "text " + truncate(trimmed)
}

func looksLikeHTML(s string) bool {
	head := strings.ToLower(s)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.Contains(head, "<html") ||
		strings.Contains(head, "<head") ||
		strings.Contains(head, "<title")
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxSummaryLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxSummaryLen-1]) + "…"
}
