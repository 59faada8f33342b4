package history

import (
	"encoding/json"
	"time"
)

// Entry is one dispatched request and its outcome. A failed call has an
// Error and no ResponseBody.
type Entry struct {
	ID           string            `json:"id" example:"6f1c3c1e-3f0e-4b8e-9d7a-2b1f4c5d6e7f"`
	Method       string            `json:"method" example:"GET"`
	URL          string            `json:"url" example:"https://example.com"`
	Headers      map[string]string `json:"headers,omitempty"`
	RequestBody  *string           `json:"request_body"`
	Status       uint16            `json:"status,omitempty" example:"200"`
	ResponseBody json.RawMessage   `json:"response_body,omitempty" swaggertype:"object"`
	Error        string            `json:"error,omitempty"`
	Summary      string            `json:"summary" example:"object (3 keys)"`
	DurationMS   int64             `json:"duration_ms" example:"42"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Failed reports whether the call never produced a response.
func (e *Entry) Failed() bool {
	return e.Error != ""
}

// Chunk is one changed span between two response bodies.
type Chunk struct {
	Type    string `json:"type" example:"added"`
	Content string `json:"content"`
}

// BodyDiff compares the responses of two history entries.
type BodyDiff struct {
	BaseID     string  `json:"base_id"`
	HeadID     string  `json:"head_id"`
	BaseStatus uint16  `json:"base_status"`
	HeadStatus uint16  `json:"head_status"`
	Identical  bool    `json:"identical"`
	Chunks     []Chunk `json:"chunks"`
}
