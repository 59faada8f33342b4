package server

import "github.com/raysh454/courier/internal/dispatcher"

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid method: \"GE T\" is not a valid HTTP method"`
}

// ClearedResponse reports how many history entries were removed.
type ClearedResponse struct {
	Deleted int64 `json:"deleted" example:"12"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	History bool   `json:"history" example:"true"`
}

// WSRequest is one frame sent by the client on /ws/requests.
type WSRequest struct {
	// ID is echoed in the reply; one is generated when empty.
	ID      string                    `json:"id,omitempty" example:"req-1"`
	Payload dispatcher.RequestPayload `json:"payload"`
}

// WSResponse answers exactly one WSRequest. Either Response or Error is set.
type WSResponse struct {
	ID       string                      `json:"id" example:"req-1"`
	Response *dispatcher.ResponsePayload `json:"response,omitempty"`
	Error    string                      `json:"error,omitempty"`
}
