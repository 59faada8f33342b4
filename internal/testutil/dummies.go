// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O.
package testutil

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/raysh454/courier/internal/logging"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(fields ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of recorded warnings.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── Transport ─────────────────────────────────────────────────────────

// SentRequest is what SpyDoer captured from one call.
type SentRequest struct {
	Method  string
	URL     string
	Host    string
	Header  http.Header
	Body    []byte
	HasBody bool
}

// SpyDoer records every request it receives and answers from Respond, or
// with a 200 and RespBody when Respond is nil. Err short-circuits with a
// transport failure.
type SpyDoer struct {
	mu       sync.Mutex
	requests []SentRequest

	Status     int
	RespBody   string
	RespHeader http.Header
	Err        error
	ReadErr    error
	Respond    func(req *http.Request) (*http.Response, error)
}

func (s *SpyDoer) Do(req *http.Request) (*http.Response, error) {
	sent := SentRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Host:   req.Host,
		Header: req.Header.Clone(),
	}
	if req.Body != nil && req.Body != http.NoBody {
		b, _ := io.ReadAll(req.Body)
		sent.Body = b
		sent.HasBody = true
	}

	s.mu.Lock()
	s.requests = append(s.requests, sent)
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	if s.Respond != nil {
		return s.Respond(req)
	}

	status := s.Status
	if status == 0 {
		status = http.StatusOK
	}
	header := s.RespHeader
	if header == nil {
		header = http.Header{}
	}
	var body io.ReadCloser = io.NopCloser(bytes.NewBufferString(s.RespBody))
	if s.ReadErr != nil {
		body = &failingBody{prefix: []byte(s.RespBody), err: s.ReadErr}
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       body,
		Request:    req,
	}, nil
}

// Calls returns the number of requests received.
func (s *SpyDoer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns a copy of the captured requests.
func (s *SpyDoer) Requests() []SentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentRequest(nil), s.requests...)
}

// Last returns the most recent captured request.
func (s *SpyDoer) Last() (SentRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return SentRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// failingBody yields prefix and then err, like a connection dropped
// mid-transfer.
type failingBody struct {
	prefix []byte
	err    error
}

func (f *failingBody) Read(p []byte) (int, error) {
	if len(f.prefix) > 0 {
		n := copy(p, f.prefix)
		f.prefix = f.prefix[n:]
		return n, nil
	}
	return 0, f.err
}

func (f *failingBody) Close() error { return nil }

// ErrConnectionReset is a canned mid-transfer failure.
var ErrConnectionReset = errors.New("connection reset by peer")
