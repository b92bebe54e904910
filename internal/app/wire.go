package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/deusflow/memeday/internal/cache"
	"github.com/deusflow/memeday/internal/config"
	"github.com/deusflow/memeday/internal/fetch"
	"github.com/deusflow/memeday/internal/gemini"
	"github.com/deusflow/memeday/internal/image"
	"github.com/deusflow/memeday/internal/logger"
	"github.com/deusflow/memeday/internal/metrics"
	"github.com/deusflow/memeday/internal/ratelimit"
	"github.com/deusflow/memeday/internal/retry"
	"github.com/deusflow/memeday/internal/rss"
	"github.com/deusflow/memeday/internal/summary"
)

// Build assembles an App from configuration. The returned cleanup releases
// the Gemini client when one was created.
func Build(ctx context.Context, cfg *config.Config, sources *config.Sources, l *slog.Logger, m *metrics.Metrics) (*App, func(), error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	client := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	fetcher := fetch.NewResolver(sources.Strategies(),
		fetch.WithClient(client),
		fetch.WithTimeout(cfg.RequestTimeout),
		fetch.WithLogger(l),
		fetch.WithMetrics(m),
	)

	imageOpts := []image.Option{
		image.WithProber(image.HTTPProber{Client: client}),
		image.WithTimeout(cfg.ImageTimeout),
		image.WithDimensions(image.Dimensions{Width: cfg.ImageWidth, Height: cfg.ImageHeight}),
		image.WithLogger(l),
		image.WithMetrics(m),
	}

	cleanup := func() {}
	var budget *ratelimit.DailyBudget
	if cfg.GeminiAPIKey != "" {
		scenes := cache.New(time.Hour)
		budget = ratelimit.NewDailyBudget("gemini", cfg.GeminiMaxRequests)
		refiner, err := gemini.NewClient(ctx, cfg.GeminiAPIKey,
			gemini.WithLogger(l),
			gemini.WithBudget(budget),
			gemini.WithSceneCache(scenes),
		)
		if err != nil {
			// image prompts still work without refinement
			logger.Component(l, "app").Warn("gemini disabled", "error", err)
			scenes.Close()
			budget = nil
		} else {
			imageOpts = append(imageOpts, image.WithRefiner(refiner))
			cleanup = func() {
				refiner.Close()
				scenes.Close()
			}
		}
	}

	opts := summary.DefaultOptions()
	opts.MaxChars = cfg.SummaryMaxChars

	a := New(
		rss.NewResolver(fetcher, l, m),
		fetcher,
		image.NewResolver(sources.ImageBuilders(), imageOpts...),
		WithSources(sources.FeedSources()),
		WithRetry(retry.RetryConfig{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true}),
		WithRace(cfg.RaceFeeds),
		WithSummarizer(summary.New(opts), cfg.MaxSummarySentences),
		WithLocation(loc),
		WithLogger(l),
		WithMetrics(m),
	)
	a.budget = budget
	return a, cleanup, nil
}
