// Command service runs the payments public API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsamuelsen/pay-public-api/internal/platform/config"
	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
	"github.com/jsamuelsen/pay-public-api/internal/platform/telemetry"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "pay-public-api: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Refuse to start on a bad config rather than fail on first use
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	logger.Info("starting",
		slog.String("version", Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("validation_strategy", cfg.Payments.ValidationStrategy),
		slog.String("connector", cfg.Services.Connector.BaseURL),
		slog.String("direct_debit_connector", cfg.Services.DirectDebitConnector.BaseURL),
	)

	tel, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("starting telemetry: %w", err)
	}

	defer func() {
		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("flushing telemetry", slog.Any("error", err))
		}
	}()

	svc, err := wire(ctx, cfg, logger)
	if err != nil {
		return err
	}

	return serve(ctx, logger, svc, cfg.Server)
}

// serve runs the HTTP server until ctx is cancelled by a signal or the
// server fails, then drains in-flight requests.
func serve(ctx context.Context, logger *slog.Logger, svc *service, cfg config.ServerConfig) error {
	failed := svc.server.Start()

	select {
	case err, ok := <-failed:
		if ok && err != nil {
			return err
		}

		return errors.New("server stopped unexpectedly")
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := svc.server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("draining requests: %w", err)
	}

	logger.Info("stopped")

	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	file := cfg.Log.File

	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    file.Enabled,
			Path:       file.Path,
			MaxSizeMB:  file.MaxSizeMB,
			MaxBackups: file.MaxBackups,
			MaxAgeDays: file.MaxAgeDays,
			Compress:   file.Compress,
		},
	})
}
