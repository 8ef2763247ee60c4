package root

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vaultfire/internal/config"
	"vaultfire/internal/engine"
	"vaultfire/internal/logging"
	"vaultfire/internal/metrics"
	"vaultfire/internal/storage"
)

type app struct {
	cfg     config.Config
	log     *slog.Logger
	metrics *metrics.Recorder
	svc     *engine.Service
}

func openApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, logCloser := logging.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Sink)

	store, err := storage.Open(ctx, cfg.Storage.Backend, cfg.Storage.DataDir)
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	log.Debug("store_opened", "backend", cfg.Storage.Backend, "dir", cfg.Storage.DataDir)

	rec := metrics.New()
	svc := engine.NewService(store, engine.Options{Logger: log, Metrics: rec})
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warn("store_close_failed", "error", err)
		}
		_ = logCloser.Close()
	}
	return &app{cfg: cfg, log: log, metrics: rec, svc: svc}, cleanup, nil
}

func nowUTC() time.Time { return time.Now().UTC() }
