package dispatcher

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/raysh454/courier/internal/logging"
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Dispatcher performs RequestPayloads over an owned HTTP client and
// normalizes the responses. It holds no per-call state and is safe for
// concurrent use.
type Dispatcher struct {
	client Doer
	logger logging.Logger
}

// New returns a Dispatcher sending through client. When client is nil a new
// *http.Client is built from cfg and owned for the Dispatcher's lifetime.
func New(cfg Config, logger logging.Logger, client Doer) *Dispatcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	componentLogger := logger.With(logging.Field{Key: "component", Value: "dispatcher"})

	if client == nil {
		client = cfg.NewHTTPClient()
		componentLogger.Debug("created http client",
			logging.Field{Key: "timeout", Value: cfg.Timeout.String()})
	}

	return &Dispatcher{
		client: client,
		logger: componentLogger,
	}
}

// Execute performs the call described by payload. Failures are *Error values
// of kind KindInvalidMethod (before any I/O), KindTransport or KindBodyRead.
// Once the body has been read Execute cannot fail.
func (d *Dispatcher) Execute(ctx context.Context, payload RequestPayload) (*ResponsePayload, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	method, err := ParseMethod(payload.Method)
	if err != nil {
		d.logger.Debug("rejected request method",
			logging.Field{Key: "method", Value: payload.Method})
		return nil, &Error{Kind: KindInvalidMethod, Err: err}
	}
	if !IsStandardMethod(method) {
		d.logger.Debug("using extension method", logging.Field{Key: "method", Value: method})
	}

	req, err := newRequest(ctx, method, payload)
	if err != nil {
		d.logger.Warn("building request failed",
			logging.Field{Key: "method", Value: method},
			logging.Field{Key: "url", Value: payload.URL},
			logging.Err(err))
		return nil, &Error{Kind: KindTransport, Err: err}
	}

	d.logger.Debug("sending http request",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: payload.URL},
		logging.Field{Key: "headers", Value: len(payload.Headers)},
		logging.Field{Key: "has_body", Value: payload.Body != nil})

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("http request failed",
			logging.Field{Key: "method", Value: method},
			logging.Field{Key: "url", Value: payload.URL},
			logging.Err(err))
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		d.logger.Warn("failed to read response body",
			logging.Field{Key: "method", Value: method},
			logging.Field{Key: "url", Value: payload.URL},
			logging.Err(err))
		return nil, &Error{Kind: KindBodyRead, Err: err}
	}

	text := decodeText(raw, resp.Header.Get("Content-Type"))
	status := uint16(resp.StatusCode)

	d.logger.Debug("received http response",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: payload.URL},
		logging.Field{Key: "status", Value: status},
		logging.Field{Key: "bytes", Value: len(raw)})

	return &ResponsePayload{
		Status: status,
		Body:   Normalize(text),
	}, nil
}

// Close releases idle connections held by the owned client.
func (d *Dispatcher) Close() error {
	if c, ok := d.client.(*http.Client); ok {
		c.CloseIdleConnections()
	}
	return nil
}

// transportManagedHeaders are looked up by net/http under their canonical
// key only. Storing them canonically lets a caller's User-Agent replace the
// default and a caller's Accept-Encoding suppress the injected gzip one.
// Content-Length, Transfer-Encoding and Trailer are always computed by
// net/http; canonicalizing them keeps a lowercase spelling from going out
// next to the computed value.
var transportManagedHeaders = map[string]bool{
	"User-Agent":        true,
	"Accept-Encoding":   true,
	"Content-Length":    true,
	"Transfer-Encoding": true,
	"Trailer":           true,
}

func newRequest(ctx context.Context, method string, payload RequestPayload) (*http.Request, error) {
	var body io.Reader
	if payload.Body != nil {
		body = strings.NewReader(*payload.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, payload.URL, body)
	if err != nil {
		return nil, err
	}

	for name, value := range payload.Headers {
		// net/http takes the Host header from req.Host only
		if strings.EqualFold(name, "Host") {
			req.Host = value
			continue
		}
		// assigned directly so the name is not canonicalized, except for
		// the headers net/http writes or inspects itself
		key := name
		if canonical := http.CanonicalHeaderKey(name); transportManagedHeaders[canonical] {
			key = canonical
		}
		req.Header[key] = append(req.Header[key], value)
	}

	return req, nil
}
