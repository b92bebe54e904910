// Package app runs one Meme Day pass: headline, article summary and cover image.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/deusflow/memeday/internal/logger"
	"github.com/deusflow/memeday/internal/metrics"
	"github.com/deusflow/memeday/internal/ratelimit"
	"github.com/deusflow/memeday/internal/retry"
	"github.com/deusflow/memeday/internal/rss"
	"github.com/deusflow/memeday/internal/scraper"
	"github.com/deusflow/memeday/internal/summary"
)

// Card is the published result of a run.
type Card struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary"`
	ImageURL    string    `json:"image_url"`
	ImageAlt    string    `json:"image_alt"`
	Timestamp   string    `json:"timestamp"`
	GeneratedAt time.Time `json:"generated_at"`
	Demo        bool      `json:"demo"`
}

// FeedResolver picks the top item. *rss.Resolver implements it.
type FeedResolver interface {
	ResolveTopItem(ctx context.Context, sources []rss.FeedSource) (rss.NewsItem, error)
	ResolveTopItemRace(ctx context.Context, sources []rss.FeedSource) (rss.NewsItem, error)
}

// ImageResolver picks the cover. *image.Resolver implements it.
type ImageResolver interface {
	Resolve(ctx context.Context, title, summary string) (url, alt string)
}

type App struct {
	feeds      FeedResolver
	fetcher    rss.TextFetcher
	images     ImageResolver
	summarizer *summary.Summarizer

	sources      []rss.FeedSource
	retry        retry.RetryConfig
	race         bool
	maxSentences int
	location     *time.Location
	now          func() time.Time

	log     *slog.Logger
	metrics *metrics.Metrics
	budget  *ratelimit.DailyBudget
}

type Option func(*App)

func WithSources(s []rss.FeedSource) Option { return func(a *App) { a.sources = s } }

func WithRetry(c retry.RetryConfig) Option { return func(a *App) { a.retry = c } }

// WithRace resolves feeds concurrently instead of in priority order.
func WithRace(race bool) Option { return func(a *App) { a.race = race } }

func WithSummarizer(s *summary.Summarizer, maxSentences int) Option {
	return func(a *App) {
		a.summarizer = s
		a.maxSentences = maxSentences
	}
}

func WithLocation(loc *time.Location) Option { return func(a *App) { a.location = loc } }

func WithClock(now func() time.Time) Option { return func(a *App) { a.now = now } }

func WithLogger(l *slog.Logger) Option { return func(a *App) { a.log = logger.Component(l, "app") } }

func WithMetrics(m *metrics.Metrics) Option { return func(a *App) { a.metrics = m } }

func New(feeds FeedResolver, fetcher rss.TextFetcher, images ImageResolver, opts ...Option) *App {
	a := &App{
		feeds:        feeds,
		fetcher:      fetcher,
		images:       images,
		summarizer:   summary.New(summary.DefaultOptions()),
		sources:      rss.DefaultSources(),
		retry:        retry.RetryConfig{MaxAttempts: 1},
		maxSentences: summary.DefaultMaxSentences,
		location:     time.UTC,
		now:          time.Now,
		log:          logger.Component(nil, "app"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run produces today's card. It never fails: a curated demo item stands in
// for the headline, the unavailable sentinel for the summary and the
// placeholder for the image.
func (a *App) Run(ctx context.Context) Card {
	start := time.Now()
	generated := a.now().In(a.location)

	card := Card{
		Timestamp:   FormatTimestamp(generated),
		GeneratedAt: generated,
	}

	item, err := a.resolveItem(ctx)
	if err != nil {
		a.log.Error("no feed item available, using demo card", "error", err)
		a.metrics.IncrementDemoFallbacks()

		demo := demoFor(generated)
		card.Title, card.Link, card.Source, card.Summary = demo.Title, demo.Link, demo.Source, demo.Summary
		card.Demo = true
	} else {
		card.Title, card.Link, card.Source = item.Title, item.Link, item.SourceName
		card.Summary = a.summarize(ctx, item)
	}

	card.ImageURL, card.ImageAlt = a.images.Resolve(ctx, card.Title, card.Summary)

	a.metrics.RecordRun(time.Since(start), card.Source)
	if err != nil {
		a.metrics.SetError(err.Error())
	}
	a.log.Info("card ready",
		"source", card.Source,
		"title", card.Title,
		"demo", card.Demo,
		"duration", time.Since(start))

	return card
}

func (a *App) resolveItem(ctx context.Context) (rss.NewsItem, error) {
	var item rss.NewsItem
	err := retry.WithRetry(ctx, a.retry, func() error {
		var err error
		if a.race {
			item, err = a.feeds.ResolveTopItemRace(ctx, a.sources)
		} else {
			item, err = a.feeds.ResolveTopItem(ctx, a.sources)
		}
		if err != nil {
			a.log.Warn("feed resolution failed", "error", err)
		}
		return err
	})
	return item, err
}

func (a *App) summarize(ctx context.Context, item rss.NewsItem) string {
	page, err := a.fetcher.FetchText(ctx, item.Link)
	if err != nil {
		a.log.Warn("article fetch failed", "link", item.Link, "error", err)
		return summary.Unavailable
	}

	text := scraper.ExtractText(page, item.Link)
	if text == "" {
		a.log.Warn("article has no readable text", "link", item.Link)
		return summary.Unavailable
	}

	return a.summarizer.Summarize(text, a.maxSentences)
}

// Budget is the Gemini request budget, or nil when prompt refinement is off.
func (a *App) Budget() *ratelimit.DailyBudget { return a.budget }
