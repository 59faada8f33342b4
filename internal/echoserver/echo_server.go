// Package echoserver is a small local target for trying requests: it serves
// JSON, plain text, HTML, empty and arbitrary-status responses and reflects
// incoming requests back as JSON.
package echoserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// EchoServer serves the fixed demo routes.
type EchoServer struct {
	cfg Config

	mu      sync.Mutex
	counter int
}

// Echo is the body returned by /echo.
type Echo struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   string            `json:"query"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// NewEchoServer creates a new echo server instance.
func NewEchoServer(cfg Config) *EchoServer {
	return &EchoServer{cfg: cfg}
}

// Handler returns the routes without listening, for embedding and tests.
func (s *EchoServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /json", s.jsonHandler)
	mux.HandleFunc("GET /text", s.textHandler)
	mux.HandleFunc("GET /html", s.htmlHandler)
	mux.HandleFunc("GET /latin1", s.latin1Handler)
	mux.HandleFunc("/empty", s.emptyHandler)
	mux.HandleFunc("/echo", s.echoHandler)
	mux.HandleFunc("/status/{code}", s.statusHandler)
	mux.HandleFunc("/counter", s.counterHandler)
	return mux
}

// Start listens on the configured port and blocks.
func (s *EchoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Echo server starting on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *EchoServer) jsonHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "hello from courier",
		"items":   []int{1, 2, 3},
		"nested":  map[string]any{"ok": true, "ratio": 0.5},
	})
}

func (s *EchoServer) textHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "plain text response\nsecond line")
}

func (s *EchoServer) htmlHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, `<!DOCTYPE html>
<html>
<head><title>Courier Echo</title></head>
<body><h1>It works</h1><p>This page is served by the courier echo server.</p></body>
</html>`)
}

// latin1Handler serves "café" encoded as ISO-8859-1.
func (s *EchoServer) latin1Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=iso-8859-1")
	_, _ = w.Write([]byte("caf\xe9"))
}

func (s *EchoServer) emptyHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *EchoServer) echoHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
		return
	}

	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		headers[k] = strings.Join(v, ", ")
	}
	if r.Host != "" {
		headers["Host"] = r.Host
	}

	writeJSON(w, http.StatusOK, Echo{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Headers: headers,
		Body:    string(body),
	})
}

func (s *EchoServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(r.PathValue("code"))
	if err != nil || code < 100 || code > 999 {
		http.Error(w, "invalid status code", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, "status %d", code)
}

// counterHandler returns a value that changes on every call, handy for
// diffing two history entries.
func (s *EchoServer) counterHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.counter++
	n := s.counter
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}
