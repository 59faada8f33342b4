// Package compose turns the request editor's form rows into a dispatcher
// payload.
package compose

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/raysh454/courier/internal/dispatcher"
)

// ErrMissingURL is returned when the form has no URL.
var ErrMissingURL = errors.New("url is required")

// Pair is one key/value row of the editor. Rows with a blank key are ignored.
type Pair struct {
	Key   string `json:"key" example:"Accept"`
	Value string `json:"value" example:"application/json"`
}

// Form is the request editor state.
type Form struct {
	Method  string `json:"method" example:"POST"`
	URL     string `json:"url" example:"https://httpbin.org/post"`
	Params  []Pair `json:"params,omitempty"`
	Headers []Pair `json:"headers,omitempty"`
	Body    string `json:"body,omitempty" example:"{\"name\": \"courier\"}"`
}

// methods that get a JSON content type unless the user sets one
var jsonBodyMethods = map[string]bool{
	"POST":  true,
	"PUT":   true,
	"PATCH": true,
}

// Build assembles the payload: query params are appended to the URL, a JSON
// body is compacted, and POST/PUT/PATCH default to a JSON content type.
func (f Form) Build() (dispatcher.RequestPayload, error) {
	if strings.TrimSpace(f.URL) == "" {
		return dispatcher.RequestPayload{}, ErrMissingURL
	}

	headers := map[string]string{}
	if jsonBodyMethods[f.Method] {
		headers["Content-Type"] = "application/json"
	}
	for _, h := range f.Headers {
		key := strings.TrimSpace(h.Key)
		if key == "" {
			continue
		}
		// a user header replaces the default regardless of case
		for existing := range headers {
			if existing != key && strings.EqualFold(existing, key) {
				delete(headers, existing)
			}
		}
		headers[key] = h.Value
	}

	payload := dispatcher.RequestPayload{
		Method:  f.Method,
		URL:     AppendQuery(f.URL, f.Params),
		Headers: headers,
	}
	if body, ok := compactBody(f.Body); ok {
		payload.Body = &body
	}
	return payload, nil
}

// AppendQuery appends the non-blank params to rawURL, escaping keys and
// values.
func AppendQuery(rawURL string, params []Pair) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if strings.TrimSpace(p.Key) == "" {
			continue
		}
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	if len(parts) == 0 {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
		if strings.HasSuffix(rawURL, "?") || strings.HasSuffix(rawURL, "&") {
			sep = ""
		}
	}
	return rawURL + sep + strings.Join(parts, "&")
}

func compactBody(body string) (string, bool) {
	if strings.TrimSpace(body) == "" {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(body)); err != nil {
		return body, true
	}
	return buf.String(), true
}
