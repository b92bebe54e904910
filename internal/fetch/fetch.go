// Package fetch retrieves a URL by walking an ordered list of transport
// strategies (direct request, then proxies) until one of them answers.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/memeday/internal/logger"
	"github.com/deusflow/memeday/internal/metrics"
)

var (
	// ErrAllStrategiesExhausted matches any *AllStrategiesExhaustedError.
	ErrAllStrategiesExhausted = errors.New("all fetch strategies exhausted")
	ErrStatus                 = errors.New("unexpected status")
	ErrEmptyBody              = errors.New("empty body")
)

const (
	DefaultTimeout = 8 * time.Second
	maxBodyBytes   = 5 << 20
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AttemptError records why one strategy failed.
type AttemptError struct {
	Strategy string
	URL      string
	Err      error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// AllStrategiesExhaustedError carries every per-strategy failure, in trial order.
type AllStrategiesExhaustedError struct {
	Target   string
	Failures []*AttemptError
}

func (e *AllStrategiesExhaustedError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("fetch %s: all %d strategies failed [%s]", e.Target, len(e.Failures), strings.Join(parts, "; "))
}

func (e *AllStrategiesExhaustedError) Is(target error) bool {
	return target == ErrAllStrategiesExhausted
}

func (e *AllStrategiesExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// FetchViaStrategies tries each strategy once, in order, with its own timeout,
// and returns the first successful body.
func FetchViaStrategies(ctx context.Context, client Doer, target string, strategies []Strategy, perAttempt time.Duration) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	r := &Resolver{client: client, strategies: strategies, timeout: perAttempt, log: logger.Component(nil, "fetch")}
	return r.FetchText(ctx, target)
}

// Resolver binds a strategy list to an HTTP client. It satisfies rss.TextFetcher.
type Resolver struct {
	client     Doer
	strategies []Strategy
	timeout    time.Duration
	log        *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Resolver)

func WithClient(c Doer) Option {
	return func(r *Resolver) { r.client = c }
}

func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = logger.Component(l, "fetch") }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver uses DefaultStrategies when strategies is empty.
func NewResolver(strategies []Strategy, opts ...Option) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	r := &Resolver{
		client:     &http.Client{},
		strategies: strategies,
		timeout:    DefaultTimeout,
		log:        logger.Component(nil, "fetch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchText returns the first successful payload for target.
func (r *Resolver) FetchText(ctx context.Context, target string) (string, error) {
	exhausted := &AllStrategiesExhaustedError{Target: target}

	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			exhausted.Failures = append(exhausted.Failures, &AttemptError{Strategy: s.Name, Err: err})
			break
		}

		reqURL := target
		if s.Transform != nil {
			reqURL = s.Transform(target)
		}

		r.metrics.IncrementFetchAttempts()
		body, err := r.attempt(ctx, reqURL, s)
		if err != nil {
			r.metrics.IncrementFetchFailures()
			r.log.Warn("fetch strategy failed", "strategy", s.Name, "url", reqURL, "error", err)
			exhausted.Failures = append(exhausted.Failures, &AttemptError{Strategy: s.Name, URL: reqURL, Err: err})
			continue
		}

		r.log.Debug("fetch strategy succeeded", "strategy", s.Name, "bytes", len(body))
		return body, nil
	}

	return "", exhausted
}

func (r *Resolver) attempt(ctx context.Context, reqURL string, s Strategy) (string, error) {
	timeout := r.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	body := string(raw)
	if s.Decode != nil {
		if body, err = s.Decode(raw); err != nil {
			return "", err
		}
	}
	if strings.TrimSpace(body) == "" {
		return "", ErrEmptyBody
	}
	return body, nil
}
