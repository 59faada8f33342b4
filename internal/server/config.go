package server

import (
	"github.com/raysh454/courier/internal/app"
	"github.com/raysh454/courier/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the bridge the GUI shell
	// talks to.
	ListenAddr string

	// AllowedOrigin is sent as Access-Control-Allow-Origin. Empty means "*".
	AllowedOrigin string

	Service *app.Service
	Logger  logging.Logger
}
