package config

import "os"

// ApplyEnvConfig applies configuration from environment variables (COURIER_*).
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	return applyEnv(cfg, changed, os.Getenv)
}

func applyEnv(cfg *Config, changed map[string]bool, getenv func(string) string) error {
	s := newConfigSetter(changed)

	s.setString(FlagListen, getenv("COURIER_LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString(FlagStorageRoot, getenv("COURIER_STORAGE_ROOT"), &cfg.StorageRoot)
	s.setString(FlagLogLevel, getenv("COURIER_LOG_LEVEL"), &cfg.LogLevel)
	s.setString(FlagLogFormat, getenv("COURIER_LOG_FORMAT"), &cfg.LogFormat)
	s.setString(FlagAllowedOrigin, getenv("COURIER_ALLOWED_ORIGIN"), &cfg.AllowedOrigin)

	if err := s.setDuration(FlagTimeout, getenv("COURIER_CLIENT_TIMEOUT"), &cfg.ClientTimeout); err != nil {
		return err
	}
	if err := s.setBoolFromString(FlagHistory, getenv("COURIER_HISTORY_ENABLED"), &cfg.HistoryEnabled); err != nil {
		return err
	}
	if err := s.setIntFromString(FlagHistoryLimit, getenv("COURIER_HISTORY_LIMIT"), &cfg.HistoryLimit); err != nil {
		return err
	}
	return nil
}
