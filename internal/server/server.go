package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/sync/errgroup"

	"github.com/raysh454/courier/internal/app"
	"github.com/raysh454/courier/internal/compose"
	"github.com/raysh454/courier/internal/dispatcher"
	"github.com/raysh454/courier/internal/history"
	"github.com/raysh454/courier/internal/logging"

	_ "github.com/raysh454/courier/internal/server/docs" // swagger spec
)

var errHistoryDisabled = errors.New("history is disabled")

// Server is the HTTP + WebSocket surface the GUI shell invokes.
type Server struct {
	cfg      Config
	service  *app.Service
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer creates a Server around an already built Service.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("server: service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}

	s := &Server{
		cfg:     cfg,
		service: cfg.Service,
		router:  chi.NewRouter(),
		logger:  logger.With(logging.Field{Key: "component", Value: "server"}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return cfg.AllowedOrigin == "*" || origin == "" || origin == cfg.AllowedOrigin
			},
		},
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/requests", s.optionsHandler("POST"))
	r.Options("/forms", s.optionsHandler("POST"))
	r.Options("/history", s.optionsHandler("GET, DELETE"))
	r.Options("/history/{id}", s.optionsHandler("GET, DELETE"))
	r.Options("/history/{id}/diff", s.optionsHandler("GET"))

	r.Get("/healthz", s.handleHealth)

	// Dispatch
	r.Post("/requests", s.handleSendRequest)
	r.Post("/forms", s.handleSendForm)

	// History
	r.Get("/history", s.handleListHistory)
	r.Delete("/history", s.handleClearHistory)
	r.Get("/history/{id}", s.handleGetHistory)
	r.Delete("/history/{id}", s.handleDeleteHistory)
	r.Get("/history/{id}/diff", s.handleDiffHistory)

	// WebSocket invoke channel
	r.Get("/ws/requests", s.handleRequestsWS)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("http_request",
		logging.Field{Key: "method", Value: r.Method},
		logging.Field{Key: "path", Value: r.URL.Path})

	s.router.ServeHTTP(w, r)
}

// Close releases the service.
func (s *Server) Close() error {
	return s.service.Close()
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // dispatched calls have no deadline of their own
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, dispatcher.ErrInvalidMethod), errors.Is(err, compose.ErrMissingURL):
		return http.StatusBadRequest
	case errors.Is(err, dispatcher.ErrTransport), errors.Is(err, dispatcher.ErrBodyRead):
		return http.StatusBadGateway
	case errors.Is(err, history.ErrNotFound), errors.Is(err, errHistoryDisabled):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) historyStore() (*history.Store, error) {
	store := s.service.History()
	if store == nil {
		return nil, errHistoryDisabled
	}
	return store, nil
}

// --- HTTP handlers ---

// handleHealth godoc
// @Summary Liveness probe
// @Tags meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", History: s.service.History() != nil})
}

// handleSendRequest godoc
// @Summary Dispatch a request
// @Description Performs the described HTTP call and returns the status and normalized body.
// @Tags requests
// @Accept json
// @Produce json
// @Param payload body dispatcher.RequestPayload true "Request to perform"
// @Success 200 {object} dispatcher.ResponsePayload
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /requests [post]
func (s *Server) handleSendRequest(w http.ResponseWriter, r *http.Request) {
	var payload dispatcher.RequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.logger.Warn("decoding request payload", logging.Err(err))
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	// a dispatched call runs to completion even if the caller goes away
	resp, err := s.service.Send(context.WithoutCancel(r.Context()), payload)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSendForm godoc
// @Summary Compose and dispatch a request
// @Description Builds a request from editor rows (query params, headers, body) and performs it.
// @Tags requests
// @Accept json
// @Produce json
// @Param form body compose.Form true "Editor state"
// @Success 200 {object} dispatcher.ResponsePayload
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /forms [post]
func (s *Server) handleSendForm(w http.ResponseWriter, r *http.Request) {
	var form compose.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		s.logger.Warn("decoding form", logging.Err(err))
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	resp, err := s.service.SendForm(context.WithoutCancel(r.Context()), form)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListHistory godoc
// @Summary List request history
// @Tags history
// @Produce json
// @Param limit query int false "Maximum number of entries (newest first)"
// @Success 200 {array} history.Entry
// @Failure 404 {object} ErrorResponse
// @Router /history [get]
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	store, err := s.historyStore()
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		v, err := strconv.Atoi(ls)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}

	entries, err := store.List(r.Context(), limit)
	if err != nil {
		s.logger.Warn("listing history", logging.Err(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleGetHistory godoc
// @Summary Get a history entry
// @Tags history
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} history.Entry
// @Failure 404 {object} ErrorResponse
// @Router /history/{id} [get]
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	store, err := s.historyStore()
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	entry, err := store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleDeleteHistory godoc
// @Summary Delete a history entry
// @Tags history
// @Param id path string true "Entry ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /history/{id} [delete]
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	store, err := s.historyStore()
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := store.Delete(r.Context(), id); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	s.logger.Info("deleted history entry", logging.Field{Key: "id", Value: id})
	w.WriteHeader(http.StatusNoContent)
}

// handleClearHistory godoc
// @Summary Clear the request history
// @Tags history
// @Produce json
// @Success 200 {object} ClearedResponse
// @Failure 404 {object} ErrorResponse
// @Router /history [delete]
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	store, err := s.historyStore()
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	n, err := store.Clear(r.Context())
	if err != nil {
		s.logger.Warn("clearing history", logging.Err(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("cleared history", logging.Field{Key: "deleted", Value: n})
	writeJSON(w, http.StatusOK, ClearedResponse{Deleted: n})
}

// handleDiffHistory godoc
// @Summary Diff two responses
// @Description Compares the response body of {id} against the entry given by ?against=.
// @Tags history
// @Produce json
// @Param id path string true "Base entry ID"
// @Param against query string true "Head entry ID"
// @Success 200 {object} history.BodyDiff
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /history/{id}/diff [get]
func (s *Server) handleDiffHistory(w http.ResponseWriter, r *http.Request) {
	store, err := s.historyStore()
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	against := r.URL.Query().Get("against")
	if against == "" {
		writeError(w, http.StatusBadRequest, "missing against query parameter")
		return
	}

	d, err := store.Diff(r.Context(), chi.URLParam(r, "id"), against)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleRequestsWS godoc
// @Summary Dispatch requests over a WebSocket
// @Description Each text frame is a WSRequest; each reply is a WSResponse carrying the same id. Requests run concurrently, so replies may arrive out of order.
// @Tags requests
// @Router /ws/requests [get]
func (s *Server) handleRequestsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Err(err))
		return
	}
	defer conn.Close()

	ctx := context.WithoutCancel(r.Context())
	var (
		writeMu  sync.Mutex
		inflight errgroup.Group
	)
	reply := func(msg WSResponse) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read ended", logging.Err(err))
			}
			break
		}

		var req WSRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if werr := reply(WSResponse{Error: "invalid JSON"}); werr != nil {
				break
			}
			continue
		}
		if req.ID == "" {
			req.ID = uuid.New().String()
		}

		inflight.Go(func() error {
			return s.dispatchWS(ctx, req, reply)
		})
	}

	if err := inflight.Wait(); err != nil {
		s.logger.Debug("websocket reply failed", logging.Err(err))
	}
}

func (s *Server) dispatchWS(ctx context.Context, req WSRequest, reply func(WSResponse) error) error {
	resp, err := s.service.Send(ctx, req.Payload)
	msg := WSResponse{ID: req.ID, Response: resp}
	if err != nil {
		msg.Error = err.Error()
	}
	return reply(msg)
}
