package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/deusflow/memeday/internal/app"
	"github.com/deusflow/memeday/internal/cache"
	"github.com/deusflow/memeday/internal/config"
	"github.com/deusflow/memeday/internal/logger"
	"github.com/deusflow/memeday/internal/metrics"
	"github.com/deusflow/memeday/internal/scheduler"
	"github.com/deusflow/memeday/internal/server"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.Debug, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("memeday stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	sources, err := config.LoadSources(cfg.SourcesConfigPath)
	if err != nil {
		return fmt.Errorf("sources: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	a, cleanup, err := app.Build(ctx, cfg, sources, log, m)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Mode == config.ModeServe {
		return serve(ctx, cfg, a, m, log)
	}
	return once(ctx, a)
}

func once(ctx context.Context, a *app.App) error {
	card := a.Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(card)
}

func serve(ctx context.Context, cfg *config.Config, a *app.App, m *metrics.Metrics, log *slog.Logger) error {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	cards := cache.New(cfg.CacheTTL)
	defer cards.Close()

	srv := server.New(a, cards, server.Config{
		Addr:           fmt.Sprintf(":%d", cfg.HTTPPort),
		CacheTTL:       cfg.CacheTTL,
		AllowedOrigins: cfg.AllowedOrigins,
		Budget:         a.Budget(),
	}, m, log)

	sched, err := scheduler.NewScheduler(cfg.Timezone)
	if err != nil {
		return err
	}
	err = sched.Schedule(cfg.RefreshAt, func() {
		log.Info("scheduled refresh started")
		srv.Refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	sched.Start()
	defer sched.Stop()
	log.Info("daily refresh scheduled", "at", cfg.RefreshAt, "timezone", cfg.Timezone, "next", sched.Next())

	// warm the cache so the first visitor does not wait for the feeds
	go srv.Refresh(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
