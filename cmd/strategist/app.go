package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/Strategist/internal/config"
	"github.com/MikeSquared-Agency/Strategist/internal/export"
	"github.com/MikeSquared-Agency/Strategist/internal/hermes"
	"github.com/MikeSquared-Agency/Strategist/internal/session"
	"github.com/MikeSquared-Agency/Strategist/internal/store"
)

// load reads the config named by --config and builds the logger it describes.
// Logs go to w so command output on stdout stays clean.
func (o *rootOptions) load(w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, newLogger(cfg.Logging, o.debug, w), nil
}

func newLogger(cfg config.LoggingConfig, debug bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func openHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.History.Backend {
	case "badger":
		s, err := store.OpenBadgerStore(store.BadgerOptions{Path: cfg.History.Path, Logger: logger})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// connectHermes returns nil when events are disabled or the broker is unreachable.
func connectHermes(ctx context.Context, cfg *config.Config, logger *slog.Logger) hermes.Client {
	if cfg.Hermes.URL == "" {
		return nil
	}
	hc, err := hermes.NewNATSClient(ctx, cfg.Hermes, logger)
	if err != nil {
		logger.Warn("failed to connect to hermes, running without events", "error", err)
		return nil
	}
	logger.Info("connected to hermes")
	return hc
}

func newEvaluator(cfg *config.Config, hist store.Store, events hermes.Client, withExport bool, logger *slog.Logger) *session.Evaluator {
	sinks := session.Sinks{History: hist, Events: events}
	if withExport && cfg.Export.Enabled {
		sinks.Export = export.NewFileSink(cfg.Export.Dir, cfg.Export.Header)
	}
	return session.NewEvaluator(cfg.Evaluation, sinks, logger)
}

func tierWeights(raw []string, mapping config.TierWeights) ([]float64, error) {
	tiers := make([]session.Tier, len(raw))
	for i, s := range raw {
		t, err := session.ParseTier(s)
		if err != nil {
			return nil, fmt.Errorf("weight %d: %w", i+1, err)
		}
		tiers[i] = t
	}
	return session.TierWeights(tiers, mapping)
}
