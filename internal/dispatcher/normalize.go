package dispatcher

import (
	"bytes"
	"encoding/json"
	"mime"
	"strings"

	"golang.org/x/net/html/charset"
)

// Normalize turns response text into a JSON value. Text that does not parse
// as a single JSON document becomes {"raw": text}. It never fails.
func Normalize(text string) any {
	if v, ok := decodeJSON(text); ok {
		return v
	}
	return map[string]any{"raw": text}
}

func decodeJSON(text string) (any, bool) {
	if !json.Valid([]byte(text)) {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(text))
	// keep numbers exact
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// decodeText converts a response body to UTF-8 using the charset declared in
// contentType. Unknown or missing charsets are treated as UTF-8 and invalid
// sequences are replaced with U+FFFD.
func decodeText(raw []byte, contentType string) string {
	if label := charsetLabel(contentType); label != "" {
		if enc, name := charset.Lookup(label); enc != nil && name != "utf-8" {
			if decoded, err := enc.NewDecoder().Bytes(raw); err == nil {
				return string(decoded)
			}
		}
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	return strings.ToValidUTF8(string(raw), "\uFFFD")
}

func charsetLabel(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}
