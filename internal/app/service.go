package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raysh454/courier/internal/compose"
	"github.com/raysh454/courier/internal/config"
	"github.com/raysh454/courier/internal/dispatcher"
	"github.com/raysh454/courier/internal/history"
	"github.com/raysh454/courier/internal/logging"
)

// Service is what the host shell talks to: it dispatches requests and keeps
// the request history.
type Service struct {
	dispatcher   *dispatcher.Dispatcher
	history      *history.Store
	historyLimit int
	logger       logging.Logger
	now          func() time.Time
}

// New builds a Service from cfg, opening the history database under
// cfg.StorageRoot when history is enabled.
func New(cfg config.Config, logger logging.Logger) (*Service, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	d := dispatcher.New(dispatcher.Config{Timeout: cfg.ClientTimeout}, logger, nil)

	var store *history.Store
	if cfg.HistoryEnabled {
		path, err := cfg.HistoryPath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating storage root: %w", err)
		}
		store, err = history.Open(path, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("opened history", logging.Field{Key: "path", Value: path})
	}

	return NewService(d, store, logger, cfg.HistoryLimit), nil
}

// NewService ties together a dispatcher and an optional history store.
func NewService(d *dispatcher.Dispatcher, store *history.Store, logger logging.Logger, historyLimit int) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		dispatcher:   d,
		history:      store,
		historyLimit: historyLimit,
		logger:       logger.With(logging.Field{Key: "component", Value: "service"}),
		now:          time.Now,
	}
}

// Send dispatches payload and records the outcome in history. The result is
// exactly what the dispatcher returned; history failures are only logged.
func (s *Service) Send(ctx context.Context, payload dispatcher.RequestPayload) (*dispatcher.ResponsePayload, error) {
	start := s.now()
	resp, err := s.dispatcher.Execute(ctx, payload)
	elapsed := s.now().Sub(start)

	if err != nil {
		s.logger.Info("request failed",
			logging.Field{Key: "method", Value: payload.Method},
			logging.Field{Key: "url", Value: payload.URL},
			logging.Field{Key: "kind", Value: dispatcher.KindOf(err).String()},
			logging.Err(err))
	} else {
		s.logger.Info("request completed",
			logging.Field{Key: "method", Value: payload.Method},
			logging.Field{Key: "url", Value: payload.URL},
			logging.Field{Key: "status", Value: resp.Status},
			logging.Field{Key: "duration", Value: elapsed})
	}

	s.record(context.WithoutCancel(ctx), payload, resp, err, elapsed)
	return resp, err
}

// SendForm composes the editor form into a payload and sends it.
func (s *Service) SendForm(ctx context.Context, form compose.Form) (*dispatcher.ResponsePayload, error) {
	payload, err := form.Build()
	if err != nil {
		return nil, err
	}
	return s.Send(ctx, payload)
}

// History returns the history store, or nil when history is disabled.
func (s *Service) History() *history.Store {
	return s.history
}

// Close releases the dispatcher's connections and the history database.
func (s *Service) Close() error {
	if s.dispatcher != nil {
		_ = s.dispatcher.Close()
	}
	if s.history != nil {
		return s.history.Close()
	}
	return nil
}

func (s *Service) record(ctx context.Context, payload dispatcher.RequestPayload, resp *dispatcher.ResponsePayload, sendErr error, elapsed time.Duration) {
	if s.history == nil {
		return
	}

	entry := &history.Entry{
		Method:      payload.Method,
		URL:         payload.URL,
		Headers:     payload.Headers,
		RequestBody: payload.Body,
		DurationMS:  elapsed.Milliseconds(),
		CreatedAt:   s.now().UTC(),
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
		entry.Summary = dispatcher.KindOf(sendErr).String()
	} else {
		body, err := json.Marshal(resp.Body)
		if err != nil {
			s.logger.Warn("encoding response for history", logging.Err(err))
			return
		}
		entry.Status = resp.Status
		entry.ResponseBody = body
		entry.Summary = history.Summarize(resp.Body)
	}

	if err := s.history.Record(ctx, entry); err != nil {
		s.logger.Warn("recording history entry", logging.Err(err))
		return
	}
	if s.historyLimit > 0 {
		if _, err := s.history.Prune(ctx, s.historyLimit); err != nil {
			s.logger.Warn("pruning history", logging.Err(err))
		}
	}
}
