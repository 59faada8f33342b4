package dispatcher

// RequestPayload is a generic description of one HTTP call.
type RequestPayload struct {
	Method string `json:"method" example:"GET"`
	URL    string `json:"url" example:"https://example.com"`
	// Headers are forwarded one entry per header, names untouched.
	Headers map[string]string `json:"headers,omitempty"`
	// Body is sent verbatim when non-nil. A nil Body sends no body at all.
	Body *string `json:"body"`
}

// ResponsePayload is the normalized result of a dispatched call.
type ResponsePayload struct {
	Status uint16 `json:"status" example:"200"`
	// Body is either the decoded JSON document returned by the server or
	// {"raw": <text>} when the response text is not JSON.
	Body any `json:"body" swaggertype:"object"`
}

// StringPtr is a small helper for building payloads with a body.
func StringPtr(s string) *string {
	return &s
}
