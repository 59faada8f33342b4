package dispatcher

import (
	"net/http"
	"time"
)

// Config controls construction of the owned HTTP client.
type Config struct {
	// Timeout bounds a whole exchange on the owned client. Zero leaves the
	// client without a deadline, which is the net/http default.
	Timeout time.Duration
}

// DefaultConfig returns the zero-timeout configuration.
func DefaultConfig() Config {
	return Config{}
}

// NewHTTPClient builds the client a Dispatcher owns when none is injected.
func (c Config) NewHTTPClient() *http.Client {
	return &http.Client{Timeout: c.Timeout}
}
