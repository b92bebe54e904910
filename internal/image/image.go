// Package image picks a cover image URL for the headline. It always returns
// something: the embedded placeholder ends every candidate list.
package image

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/memeday/internal/logger"
	"github.com/deusflow/memeday/internal/metrics"
)

const (
	DefaultTimeout     = 6 * time.Second
	DefaultMaxURLBytes = 2000
	probeReadLimit     = 1 << 20

	PlaceholderAlt = "Imagem padrão do Meme Day"
)

var ErrNotImage = errors.New("response is not an image")

//go:embed assets/placeholder.svg
var placeholderSVG []byte

// PlaceholderURL is a data URI of the embedded placeholder. It needs no network.
var PlaceholderURL = "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(placeholderSVG)

// Prober checks that a URL actually serves an image.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// PromptRefiner rewrites the generator prompt, e.g. with an LLM.
type PromptRefiner interface {
	RefinePrompt(ctx context.Context, title, summary string) (string, error)
}

// HTTPProber downloads the start of the resource and decodes its image header.
type HTTPProber struct {
	Client *http.Client
}

func (p HTTPProber) Probe(ctx context.Context, url string) error {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	head, err := io.ReadAll(io.LimitReader(resp.Body, probeReadLimit))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if _, _, err := stdimage.DecodeConfig(bytes.NewReader(head)); err == nil {
		return nil
	}
	// formats without a registered decoder (webp, svg) are trusted by content type
	if strings.HasPrefix(strings.ToLower(resp.Header.Get("Content-Type")), "image/") && len(head) > 0 {
		return nil
	}
	return ErrNotImage
}

// Resolver tries image candidates in order.
type Resolver struct {
	builders    []CandidateBuilder
	prober      Prober
	refiner     PromptRefiner
	timeout     time.Duration
	dims        Dimensions
	maxURLBytes int
	log         *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Resolver)

// WithProber replaces the default HTTPProber; nil keeps it.
func WithProber(p Prober) Option {
	return func(r *Resolver) {
		if p != nil {
			r.prober = p
		}
	}
}

func WithRefiner(p PromptRefiner) Option { return func(r *Resolver) { r.refiner = p } }

func WithTimeout(d time.Duration) Option { return func(r *Resolver) { r.timeout = d } }

func WithDimensions(d Dimensions) Option { return func(r *Resolver) { r.dims = d } }

func WithMaxURLBytes(n int) Option { return func(r *Resolver) { r.maxURLBytes = n } }

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = logger.Component(l, "image") }
}

func WithMetrics(m *metrics.Metrics) Option { return func(r *Resolver) { r.metrics = m } }

// NewResolver uses DefaultBuilders when builders is empty.
func NewResolver(builders []CandidateBuilder, opts ...Option) *Resolver {
	if len(builders) == 0 {
		builders = DefaultBuilders()
	}
	r := &Resolver{
		builders:    builders,
		prober:      HTTPProber{},
		timeout:     DefaultTimeout,
		dims:        DefaultDimensions,
		maxURLBytes: DefaultMaxURLBytes,
		log:         logger.Component(nil, "image"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveImageURL probes candidates derived from seed and returns the first
// that loads, or PlaceholderURL.
func ResolveImageURL(ctx context.Context, seed string, builders []CandidateBuilder, prober Prober, timeout time.Duration) string {
	r := NewResolver(builders, WithProber(prober), WithTimeout(timeout))
	return r.resolve(ctx, Seed{Text: seed, Prompt: seed})
}

// Resolve picks the cover for a headline and returns the URL with its alt text.
func (r *Resolver) Resolve(ctx context.Context, title, summary string) (string, string) {
	prompt := BuildPrompt(title, summary)
	if r.refiner != nil {
		refined, err := r.refiner.RefinePrompt(ctx, title, summary)
		switch {
		case err != nil:
			r.log.Warn("prompt refinement failed, using plain prompt", "error", err)
		case strings.TrimSpace(refined) != "":
			prompt = strings.TrimSpace(refined)
		}
	}

	u := r.resolve(ctx, Seed{Text: title, Prompt: prompt})
	if u == PlaceholderURL {
		return u, PlaceholderAlt
	}
	return u, "Imagem gerada para: " + title
}

// Candidates lists the URLs that would be tried for seed, placeholder last.
func (r *Resolver) Candidates(seed Seed) []string {
	out := make([]string, 0, len(r.builders)+1)
	for _, b := range r.builders {
		u, ok := fit(b, seed, r.dims, r.maxURLBytes)
		if !ok {
			r.log.Debug("image candidate skipped, over byte budget", "builder", b.Name)
			continue
		}
		out = append(out, u)
	}
	return append(out, PlaceholderURL)
}

func (r *Resolver) resolve(ctx context.Context, seed Seed) string {
	for _, u := range r.Candidates(seed) {
		if u == PlaceholderURL {
			break
		}
		if r.probe(ctx, u) {
			return u
		}
	}
	r.metrics.IncrementImagePlaceholder()
	r.log.Info("image providers unavailable, using placeholder")
	return PlaceholderURL
}

func (r *Resolver) probe(ctx context.Context, u string) bool {
	if r.prober == nil || ctx.Err() != nil {
		return false
	}
	timeout := r.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.metrics.IncrementImageProbes()
	if err := r.prober.Probe(ctx, u); err != nil {
		r.log.Warn("image candidate failed", "url", u, "error", err)
		return false
	}
	return true
}
