package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/raysh454/courier/internal/app"
	"github.com/raysh454/courier/internal/dispatcher"
	"github.com/raysh454/courier/internal/history"
	"github.com/raysh454/courier/internal/server"
	"github.com/raysh454/courier/internal/testutil"
)

// newUpstream serves a few fixed routes for the server under test to call.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"n":1}`)
	})
	mux.HandleFunc("/text", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "missing")
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"method": r.Method,
			"query":  r.URL.RawQuery,
			"body":   string(body),
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, withHistory bool) *server.Server {
	t.Helper()

	logger := &testutil.DummyLogger{}
	var store *history.Store
	if withHistory {
		var err error
		store, err = history.Open(filepath.Join(t.TempDir(), "history.db"), logger)
		if err != nil {
			t.Fatalf("history.Open: %v", err)
		}
	}
	d := dispatcher.New(dispatcher.DefaultConfig(), logger, nil)
	svc := app.NewService(d, store, logger, 0)

	s, err := server.NewServer(server.Config{
		ListenAddr: ":0",
		Service:    svc,
		Logger:     logger,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func doJSON(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

// ─── Construction ──────────────────────────────────────────────────────

func TestNewServer_RequiresService(t *testing.T) {
	t.Parallel()
	if _, err := server.NewServer(server.Config{}); err == nil {
		t.Fatal("expected error without a service")
	}
}

// ─── CORS ──────────────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false)

	rec := doJSON(t, s, "GET", "/healthz", "")

	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
}

func TestServer_CORS_Preflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false)

	rec := doJSON(t, s, "OPTIONS", "/requests", "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if m := rec.Header().Get("Access-Control-Allow-Methods"); m != "POST" {
		t.Errorf("unexpected allow methods %q", m)
	}
}

// ─── Health ────────────────────────────────────────────────────────────

func TestServer_Health(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, true)

	rec := doJSON(t, s, "GET", "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got server.HealthResponse
	decodeJSON(t, rec, &got)
	if diff := cmp.Diff(server.HealthResponse{Status: "ok", History: true}, got); diff != "" {
		t.Errorf("health mismatch (-want +got):\n%s", diff)
	}
}

// ─── Requests ──────────────────────────────────────────────────────────

func TestServer_SendRequest_JSONBody(t *testing.T) {
	t.Parallel()
	up := newUpstream(t)
	s := newTestServer(t, false)

	rec := doJSON(t, s, "POST", "/requests", mustMarshal(t, dispatcher.RequestPayload{
		Method: "GET",
		URL:    up.URL + "/json",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got, want := strings.TrimSpace(rec.Body.String()), `{"status":200,"body":{"n":1,"ok":true}}`; got != want {
		t.Errorf("envelope = %s, want %s", got, want)
	}
}

func TestServer_SendRequest_RawFallback(t *testing.T) {
	t.Parallel()
	up := newUpstream(t)
	s := newTestServer(t, false)

	rec := doJSON(t, s, "POST", "/requests", mustMarshal(t, dispatcher.RequestPayload{
		Method: "GET",
		URL:    up.URL + "/text",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got, want := strings.TrimSpace(rec.Body.String()), `{"status":404,"body":{"raw":"missing"}}`; got != want {
		t.Errorf("envelope = %s, want %s", got, want)
	}
}

func TestServer_SendRequest_Errors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantPrefix string
	}{
		{"malformed json", `{"method":`, http.StatusBadRequest, "invalid JSON"},
		{"invalid method", `{"method":"GE T","url":"http://127.0.0.1:1/"}`, http.StatusBadRequest, "invalid method"},
		{"transport failure", `{"method":"GET","url":"http://127.0.0.1:1/"}`, http.StatusBadGateway, "transport error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := doJSON(t, s, "POST", "/requests", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			var er server.ErrorResponse
			decodeJSON(t, rec, &er)
			if !strings.HasPrefix(er.Error, tt.wantPrefix) {
				t.Errorf("error %q does not start with %q", er.Error, tt.wantPrefix)
			}
		})
	}
}

func TestServer_SendForm(t *testing.T) {
	t.Parallel()
	up := newUpstream(t)
	s := newTestServer(t, false)

	rec := doJSON(t, s, "POST", "/forms", mustMarshal(t, map[string]any{
		"method": "POST",
		"url":    up.URL + "/echo",
		"params": []map[string]string{{"key": "q", "value": "a b"}},
		"body":   `{ "x" : 1 }`,
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Status int               `json:"status"`
		Body   map[string]string `json:"body"`
	}
	decodeJSON(t, rec, &got)
	want := map[string]string{"method": "POST", "query": "q=a+b", "body": `{"x":1}`}
	if diff := cmp.Diff(want, got.Body); diff != "" {
		t.Errorf("echo mismatch (-want +got):\n%s", diff)
	}
}

func TestServer_SendForm_MissingURL(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false)

	rec := doJSON(t, s, "POST", "/forms", `{"method":"GET","url":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestServer_SendRequest_CompletesAfterClientLeaves(t *testing.T) {
	t.Parallel()

	completed := make(chan bool, 1)
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
			completed <- true
			_, _ = io.WriteString(w, "done")
		case <-r.Context().Done():
			completed <- false
		}
	}))
	t.Cleanup(up.Close)

	ts := httptest.NewServer(newTestServer(t, false))
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	body := mustMarshal(t, dispatcher.RequestPayload{Method: "GET", URL: up.URL})
	req, err := http.NewRequestWithContext(ctx, "POST", ts.URL+"/requests", strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if resp, err := http.DefaultClient.Do(req); err == nil {
		resp.Body.Close()
		t.Fatal("expected the bridge client to time out")
	}

	select {
	case ok := <-completed:
		if !ok {
			t.Error("upstream call was aborted when the bridge client went away")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("upstream call never finished")
	}
}

// ─── History ───────────────────────────────────────────────────────────

func TestServer_History_Disabled(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false)

	rec := doJSON(t, s, "GET", "/history", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServer_History_Lifecycle(t *testing.T) {
	t.Parallel()
	up := newUpstream(t)
	s := newTestServer(t, true)

	for _, path := range []string{"/json", "/text"} {
		rec := doJSON(t, s, "POST", "/requests", mustMarshal(t, dispatcher.RequestPayload{Method: "GET", URL: up.URL + path}))
		if rec.Code != http.StatusOK {
			t.Fatalf("send %s: %d", path, rec.Code)
		}
	}

	rec := doJSON(t, s, "GET", "/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var entries []history.Entry
	decodeJSON(t, rec, &entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	newest, oldest := entries[0], entries[1]
	if newest.Status != 404 || oldest.Status != 200 {
		t.Errorf("unexpected order: %d then %d", newest.Status, oldest.Status)
	}

	rec = doJSON(t, s, "GET", "/history?limit=1", "")
	decodeJSON(t, rec, &entries)
	if len(entries) != 1 {
		t.Errorf("limit=1 returned %d entries", len(entries))
	}

	rec = doJSON(t, s, "GET", "/history?limit=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, s, "GET", "/history/"+oldest.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	var one history.Entry
	decodeJSON(t, rec, &one)
	if one.ID != oldest.ID || one.URL != up.URL+"/json" {
		t.Errorf("unexpected entry %+v", one)
	}

	rec = doJSON(t, s, "GET", "/history/"+oldest.ID+"/diff?against="+newest.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("diff: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var d history.BodyDiff
	decodeJSON(t, rec, &d)
	if d.Identical || len(d.Chunks) == 0 {
		t.Errorf("expected differing bodies, got %+v", d)
	}

	rec = doJSON(t, s, "GET", "/history/"+oldest.ID+"/diff", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("diff without against: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, s, "DELETE", "/history/"+oldest.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, s, "GET", "/history/"+oldest.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}
	rec = doJSON(t, s, "DELETE", "/history/"+oldest.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, s, "DELETE", "/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", rec.Code)
	}
	var cleared server.ClearedResponse
	decodeJSON(t, rec, &cleared)
	if cleared.Deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", cleared.Deleted)
	}
}

// ─── Swagger ───────────────────────────────────────────────────────────

func TestServer_SwaggerDoc(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false)

	rec := doJSON(t, s, "GET", "/swagger/doc.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	decodeJSON(t, rec, &doc)
	if doc.Info.Title != "Courier API" {
		t.Errorf("unexpected title %q", doc.Info.Title)
	}
	if _, ok := doc.Paths["/requests"]; !ok {
		t.Error("expected /requests in swagger paths")
	}
}

// ─── WebSocket ─────────────────────────────────────────────────────────

func dialWS(t *testing.T, s *server.Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/requests"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServer_WS_RepliesByID(t *testing.T) {
	t.Parallel()
	up := newUpstream(t)
	s := newTestServer(t, false)
	conn := dialWS(t, s)

	reqs := []server.WSRequest{
		{ID: "a", Payload: dispatcher.RequestPayload{Method: "GET", URL: up.URL + "/json"}},
		{ID: "b", Payload: dispatcher.RequestPayload{Method: "GET", URL: up.URL + "/text"}},
		{ID: "c", Payload: dispatcher.RequestPayload{Method: "BAD METHOD", URL: up.URL + "/json"}},
	}
	for _, r := range reqs {
		if err := conn.WriteJSON(r); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	got := make(map[string]server.WSResponse)
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for range reqs {
		var msg server.WSResponse
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		got[msg.ID] = msg
	}

	if r := got["a"]; r.Response == nil || r.Response.Status != 200 {
		t.Errorf("a: unexpected reply %+v", r)
	}
	if r := got["b"]; r.Response == nil || r.Response.Status != 404 {
		t.Errorf("b: unexpected reply %+v", r)
	}
	if r := got["c"]; r.Response != nil || !strings.HasPrefix(r.Error, "invalid method") {
		t.Errorf("c: unexpected reply %+v", r)
	}
}

func TestServer_WS_GeneratesIDAndRejectsMalformed(t *testing.T) {
	t.Parallel()
	up := newUpstream(t)
	s := newTestServer(t, false)
	conn := dialWS(t, s)
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var bad server.WSResponse
	if err := conn.ReadJSON(&bad); err != nil {
		t.Fatalf("read: %v", err)
	}
	if bad.Error != "invalid JSON" {
		t.Errorf("unexpected error reply %+v", bad)
	}

	if err := conn.WriteJSON(server.WSRequest{Payload: dispatcher.RequestPayload{Method: "GET", URL: up.URL + "/json"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var ok server.WSResponse
	if err := conn.ReadJSON(&ok); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ok.ID == "" {
		t.Error("expected a generated id")
	}
	if ok.Response == nil || ok.Response.Status != 200 {
		t.Errorf("unexpected reply %+v", ok)
	}
}
