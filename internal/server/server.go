// Package server exposes the current card over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"github.com/deusflow/memeday/internal/app"
	"github.com/deusflow/memeday/internal/cache"
	"github.com/deusflow/memeday/internal/logger"
	"github.com/deusflow/memeday/internal/metrics"
	"github.com/deusflow/memeday/internal/ratelimit"
)

const (
	cardKey           = "card:today"
	defaultRunTimeout = 2 * time.Minute
)

// Runner produces a card. *app.App implements it.
type Runner interface {
	Run(ctx context.Context) app.Card
}

type Server struct {
	runner     Runner
	cache      *cache.Cache
	ttl        time.Duration
	runTimeout time.Duration
	metrics    *metrics.Metrics
	budget     *ratelimit.DailyBudget
	log        *slog.Logger

	group  singleflight.Group
	engine *gin.Engine
	http   *http.Server
}

type Config struct {
	Addr           string
	CacheTTL       time.Duration
	AllowedOrigins []string // empty allows any origin
	RunTimeout     time.Duration
	Budget         *ratelimit.DailyBudget // reported on /metrics when set
}

func New(runner Runner, c *cache.Cache, cfg Config, m *metrics.Metrics, l *slog.Logger) *Server {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaultRunTimeout
	}
	s := &Server{
		runner:     runner,
		cache:      c,
		ttl:        cfg.CacheTTL,
		runTimeout: cfg.RunTimeout,
		metrics:    m,
		budget:     cfg.Budget,
		log:        logger.Component(l, "server"),
	}
	s.engine = s.router(cfg.AllowedOrigins)
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) router(origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	corsCfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/api/today", s.GetToday)
	r.POST("/api/refresh", s.PostRefresh)
	r.GET("/health", s.GetHealth)
	r.GET("/metrics", s.GetMetrics)
	return r
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Today returns the cached card, running the pipeline on a miss.
func (s *Server) Today(ctx context.Context) (app.Card, bool) {
	if v, ok := s.cache.Get(cardKey); ok {
		if card, ok := v.(app.Card); ok {
			return card, true
		}
	}
	return s.Refresh(ctx), false
}

// Refresh runs the pipeline and replaces the cached card. Concurrent callers
// share one run. The run outlives the caller's cancellation.
func (s *Server) Refresh(ctx context.Context) app.Card {
	v, _, _ := s.group.Do(cardKey, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.runTimeout)
		defer cancel()

		card := s.runner.Run(runCtx)
		s.cache.Set(cardKey, card, s.ttl)
		return card, nil
	})
	return v.(app.Card)
}

func (s *Server) GetToday(c *gin.Context) {
	card, hit := s.Today(c.Request.Context())
	if hit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, card)
}

// PostRefresh drops the cached card first, so readers arriving mid-run wait
// for the new card instead of getting the old one.
func (s *Server) PostRefresh(c *gin.Context) {
	s.cache.Delete(cardKey)
	c.JSON(http.StatusOK, s.Refresh(c.Request.Context()))
}

func (s *Server) GetHealth(c *gin.Context) {
	stats := s.metrics.GetStats()

	status := "ok"
	code := http.StatusOK
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) GetMetrics(c *gin.Context) {
	stats := s.metrics.GetStats()
	stats["cached_items"] = s.cache.Len()
	if s.budget != nil {
		stats["gemini_budget"] = s.budget.GetStats()
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// ListenAndServe blocks until the server stops. http.ErrServerClosed is not an error.
func (s *Server) ListenAndServe() error {
	s.log.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
