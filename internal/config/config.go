package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/raysh454/courier/internal/logging"
)

// Config is the runtime configuration shared by the CLI and the server.
type Config struct {
	// ListenAddr is the host:port the HTTP bridge listens on.
	ListenAddr string

	// StorageRoot holds history.db. A leading ~ is expanded.
	StorageRoot string

	LogLevel  string
	LogFormat string

	// ClientTimeout bounds each dispatched call. Zero means no timeout.
	ClientTimeout time.Duration

	// AllowedOrigin is returned in Access-Control-Allow-Origin.
	AllowedOrigin string

	HistoryEnabled bool
	// HistoryLimit is the number of entries kept; 0 keeps everything.
	HistoryLimit int
}

// DefaultConfig returns a Config populated with local desktop defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     "127.0.0.1:7878",
		StorageRoot:    "~/.config/courier",
		LogLevel:       string(logging.LevelInfo),
		LogFormat:      string(logging.FormatJSON),
		ClientTimeout:  0,
		AllowedOrigin:  "*",
		HistoryEnabled: true,
		HistoryLimit:   500,
	}
}

// Validate checks the fields that cannot be defaulted.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address is required")
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.ListenAddr, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	if c.ClientTimeout < 0 {
		return fmt.Errorf("client timeout must not be negative, got %s", c.ClientTimeout)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history limit must not be negative, got %d", c.HistoryLimit)
	}
	if c.HistoryEnabled && c.StorageRoot == "" {
		return errors.New("storage root is required when history is enabled")
	}
	return nil
}

// HistoryPath returns the expanded path of the history database.
func (c *Config) HistoryPath() (string, error) {
	root, err := ExpandPath(c.StorageRoot)
	if err != nil {
		return "", fmt.Errorf("expanding storage root path: %w", err)
	}
	return filepath.Join(root, "history.db"), nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}

// configSetter applies a layer of values, skipping those whose flag was set
// explicitly on the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	if changed == nil {
		changed = map[string]bool{}
	}
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}
