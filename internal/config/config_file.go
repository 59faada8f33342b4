package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Flag names shared by the file, env and command-line layers.
const (
	FlagListen        = "listen"
	FlagStorageRoot   = "storage-root"
	FlagLogLevel      = "log-level"
	FlagLogFormat     = "log-format"
	FlagTimeout       = "timeout"
	FlagAllowedOrigin = "allowed-origin"
	FlagHistory       = "history"
	FlagHistoryLimit  = "history-limit"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ListenAddr     string `toml:"listen_addr"`
	StorageRoot    string `toml:"storage_root"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
	ClientTimeout  string `toml:"client_timeout"`
	AllowedOrigin  string `toml:"allowed_origin"`
	HistoryEnabled *bool  `toml:"history_enabled"`
	HistoryLimit   *int   `toml:"history_limit"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.config/courier/config.toml, or "" when the
// home directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".config", "courier", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString(FlagListen, fc.ListenAddr, &cfg.ListenAddr)
	s.setString(FlagStorageRoot, fc.StorageRoot, &cfg.StorageRoot)
	s.setString(FlagLogLevel, fc.LogLevel, &cfg.LogLevel)
	s.setString(FlagLogFormat, fc.LogFormat, &cfg.LogFormat)
	s.setString(FlagAllowedOrigin, fc.AllowedOrigin, &cfg.AllowedOrigin)

	if err := s.setDuration(FlagTimeout, fc.ClientTimeout, &cfg.ClientTimeout); err != nil {
		return err
	}

	s.setBool(FlagHistory, fc.HistoryEnabled, &cfg.HistoryEnabled)
	s.setInt(FlagHistoryLimit, fc.HistoryLimit, &cfg.HistoryLimit)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
