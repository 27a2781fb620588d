package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Maheen-M02/Event-Management/internal/config"
	"github.com/Maheen-M02/Event-Management/internal/events"
	"github.com/Maheen-M02/Event-Management/internal/session"
	"github.com/Maheen-M02/Event-Management/internal/supabase"
	"github.com/Maheen-M02/Event-Management/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "err", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting event manager",
		"listen", cfg.Listen,
		"session_ttl", cfg.SessionTTL(),
		"janitor", cfg.JanitorSchedule,
	)

	newClient := func() *supabase.Client {
		return supabase.New(supabase.Config{
			URL:     cfg.SupabaseURL,
			AnonKey: cfg.SupabaseAnonKey,
			Logger:  logger,
		})
	}

	registry := session.NewRegistry(newClient, cfg.SessionTTL(), logger)

	// The probe runs unauthenticated on the anon key, like the status
	// panel on the login screen.
	probe := events.NewProbe(newClient(), logger)

	janitor := cron.New()
	_, err = janitor.AddFunc(cfg.JanitorSchedule, func() {
		registry.Prune(time.Now())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		registry.RefreshDue(ctx, 10*time.Minute)
	})
	if err != nil {
		logger.Error("invalid janitor schedule", "schedule", cfg.JanitorSchedule, "err", err)
		os.Exit(1)
	}
	janitor.Start()
	defer janitor.Stop()

	server := web.NewServer(cfg, registry, probe, logger)
	if err := server.Run(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}
