package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/raysh454/courier/internal/app"
	"github.com/raysh454/courier/internal/config"
	"github.com/raysh454/courier/internal/logging"
	"github.com/raysh454/courier/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	cfg := config.DefaultConfig()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP bridge for the desktop shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, err := loadConfig(&cfg, cfgPath, changedFlags(cmd.Flags()))
			if err != nil {
				return err
			}

			level, _ := logging.ParseLevel(cfg.LogLevel)
			format, _ := logging.ParseFormat(cfg.LogFormat)
			logger := logging.NewZerologLogger(cmd.ErrOrStderr(), format, logging.LevelDebug, "courier")
			logging.SetGlobalLevel(level)
			logger.Info("configuration", logging.Field{Key: "config", Value: cfg})

			svc, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			srv, err := server.NewServer(server.Config{
				ListenAddr:    cfg.ListenAddr,
				AllowedOrigin: cfg.AllowedOrigin,
				Service:       svc,
				Logger:        logger,
			})
			if err != nil {
				_ = svc.Close()
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, srv.HTTPServer(), cfgFile, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.config/courier/config.toml)")
	f.StringVar(&cfg.ListenAddr, config.FlagListen, cfg.ListenAddr, "address the HTTP bridge listens on")
	f.StringVar(&cfg.StorageRoot, config.FlagStorageRoot, cfg.StorageRoot, "directory holding history.db")
	f.StringVar(&cfg.LogLevel, config.FlagLogLevel, cfg.LogLevel, "log level: debug|info|warn|error")
	f.StringVar(&cfg.LogFormat, config.FlagLogFormat, cfg.LogFormat, "log format: json|console")
	f.DurationVar(&cfg.ClientTimeout, config.FlagTimeout, cfg.ClientTimeout, "timeout for each dispatched request (0 = none)")
	f.StringVar(&cfg.AllowedOrigin, config.FlagAllowedOrigin, cfg.AllowedOrigin, "value of Access-Control-Allow-Origin")
	f.BoolVar(&cfg.HistoryEnabled, config.FlagHistory, cfg.HistoryEnabled, "record requests in the history database")
	f.IntVar(&cfg.HistoryLimit, config.FlagHistoryLimit, cfg.HistoryLimit, "history entries to keep (0 = unlimited)")

	return cmd
}

// loadConfig layers the config file and COURIER_* environment over cfg,
// leaving explicitly set flags alone, and validates the result. It returns
// the config file path when one was read.
func loadConfig(cfg *config.Config, cfgPath string, changed map[string]bool) (string, error) {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	}

	if cfgFile != "" && config.FileExists(cfgFile) {
		fc, err := config.LoadFileConfig(cfgFile)
		if err != nil {
			return "", fmt.Errorf("load config: %w", err)
		}
		if err := config.ApplyFileConfig(cfg, fc, changed); err != nil {
			return "", err
		}
	} else if cfgPath != "" {
		return "", fmt.Errorf("config file %s not found", cfgPath)
	} else {
		cfgFile = ""
	}

	if err := config.ApplyEnvConfig(cfg, changed); err != nil {
		return "", err
	}

	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return cfgFile, nil
}

// runServer serves until ctx is done, then shuts down gracefully. When
// cfgFile is set, edits to its log_level take effect without a restart.
func runServer(ctx context.Context, httpSrv *http.Server, cfgFile string, logger logging.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", logging.Field{Key: "addr", Value: httpSrv.Addr})
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if cfgFile != "" {
		w := config.NewWatcher(cfgFile, logger, func(fc config.FileConfig) {
			applyLogLevel(fc, logger)
		})
		g.Go(func() error {
			if err := w.Run(ctx); err != nil {
				logger.Warn("config reload disabled", logging.Err(err))
			}
			return nil
		})
	}

	return g.Wait()
}

func applyLogLevel(fc config.FileConfig, logger logging.Logger) {
	if fc.LogLevel == "" {
		return
	}
	level, err := logging.ParseLevel(fc.LogLevel)
	if err != nil {
		logger.Warn("ignoring log level from config file", logging.Err(err))
		return
	}
	logging.SetGlobalLevel(level)
	logger.Info("log level changed", logging.Field{Key: "level", Value: string(level)})
}
