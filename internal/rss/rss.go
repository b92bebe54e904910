// Package rss picks the top headline from an ordered list of RSS/Atom feeds.
package rss

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/deusflow/memeday/internal/logger"
	"github.com/deusflow/memeday/internal/metrics"
)

var (
	// ErrAllSourcesExhausted matches any *AllSourcesExhaustedError.
	ErrAllSourcesExhausted = errors.New("all feed sources exhausted")
	ErrParse               = errors.New("feed parse failure")
	ErrValidation          = errors.New("feed item rejected")
)

var (
	absoluteURLRe = regexp.MustCompile(`^(?i)https?://[^\s/$.?#][^\s]*$`)
	bareURLRe     = regexp.MustCompile(`https?://[^\s"'<>]+`)
)

// TextFetcher downloads a document as text. fetch.Resolver implements it.
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// SourceError records why one source was skipped.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string { return e.Source + ": " + e.Err.Error() }

func (e *SourceError) Unwrap() error { return e.Err }

// AllSourcesExhaustedError lists every source failure in priority order.
type AllSourcesExhaustedError struct {
	Failures []*SourceError
}

func (e *AllSourcesExhaustedError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("no usable feed item from %d sources [%s]", len(e.Failures), strings.Join(parts, "; "))
}

func (e *AllSourcesExhaustedError) Is(target error) bool {
	return target == ErrAllSourcesExhausted
}

func (e *AllSourcesExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Resolver walks feed sources through a TextFetcher.
type Resolver struct {
	fetcher TextFetcher
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewResolver(fetcher TextFetcher, l *slog.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{fetcher: fetcher, log: logger.Component(l, "rss"), metrics: m}
}

// ResolveTopItem is the package-level form of Resolver.ResolveTopItem.
func ResolveTopItem(ctx context.Context, sources []FeedSource, fetcher TextFetcher) (NewsItem, error) {
	return NewResolver(fetcher, nil, nil).ResolveTopItem(ctx, sources)
}

// ResolveTopItem tries sources strictly in order and returns the first valid item.
func (r *Resolver) ResolveTopItem(ctx context.Context, sources []FeedSource) (NewsItem, error) {
	exhausted := &AllSourcesExhaustedError{}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			exhausted.Failures = append(exhausted.Failures, &SourceError{Source: src.Name, Err: err})
			break
		}

		item, err := r.fromSource(ctx, src)
		if err != nil {
			r.log.Warn("feed source failed", "source", src.Name, "error", err)
			exhausted.Failures = append(exhausted.Failures, &SourceError{Source: src.Name, Err: err})
			continue
		}

		r.log.Info("feed source used", "source", src.Name, "title", item.Title)
		return item, nil
	}

	return NewsItem{}, exhausted
}

// ResolveTopItemRace requests every source at once and returns whichever valid
// item settles first. The remaining requests are cancelled.
func (r *Resolver) ResolveTopItemRace(ctx context.Context, sources []FeedSource) (NewsItem, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	winner := make(chan NewsItem, 1)
	failures := make([]*SourceError, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			item, err := r.fromSource(gctx, src)
			if err != nil {
				failures[i] = &SourceError{Source: src.Name, Err: err}
				return nil
			}
			select {
			case winner <- item:
				cancel()
			default:
			}
			return nil
		})
	}
	_ = g.Wait()

	select {
	case item := <-winner:
		r.log.Info("feed race won", "source", item.SourceName, "title", item.Title)
		return item, nil
	default:
	}

	exhausted := &AllSourcesExhaustedError{}
	for _, f := range failures {
		if f != nil {
			exhausted.Failures = append(exhausted.Failures, f)
		}
	}
	return NewsItem{}, exhausted
}

func (r *Resolver) fromSource(ctx context.Context, src FeedSource) (NewsItem, error) {
	r.metrics.IncrementFeedAttempts()

	item, err := r.parseSource(ctx, src)
	if err != nil {
		r.metrics.IncrementFeedFailures()
		return NewsItem{}, err
	}
	return item, nil
}

func (r *Resolver) parseSource(ctx context.Context, src FeedSource) (NewsItem, error) {
	body, err := r.fetcher.FetchText(ctx, src.Endpoint())
	if err != nil {
		return NewsItem{}, err
	}

	feed, err := parseFeed(body)
	if err != nil {
		return NewsItem{}, err
	}
	if !src.Kind.Matches(feed.FeedType) {
		r.log.Warn("feed kind differs from configuration",
			"source", src.Name, "configured", src.Kind, "detected", feed.FeedType)
	}
	return topItem(feed, src)
}

// ParseTopItem extracts and validates the first item of a feed document.
func ParseTopItem(body string, src FeedSource) (NewsItem, error) {
	feed, err := parseFeed(body)
	if err != nil {
		return NewsItem{}, err
	}
	return topItem(feed, src)
}

func parseFeed(body string) (*gofeed.Feed, error) {
	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return feed, nil
}

func topItem(feed *gofeed.Feed, src FeedSource) (NewsItem, error) {
	if len(feed.Items) == 0 || feed.Items[0] == nil {
		return NewsItem{}, fmt.Errorf("%w: feed has no items", ErrValidation)
	}

	first := feed.Items[0]
	title := strings.TrimSpace(first.Title)
	link := itemLink(first)

	if src.ExtractOriginalLink {
		if original := OriginalLink(first.Description, src.Host()); original != "" {
			link = original
		}
	}

	if title == "" {
		return NewsItem{}, fmt.Errorf("%w: missing title", ErrValidation)
	}
	if !IsAbsoluteURL(link) {
		return NewsItem{}, fmt.Errorf("%w: link %q is not an absolute http(s) URL", ErrValidation, link)
	}

	return NewsItem{Title: title, Link: link, SourceName: src.Name}, nil
}

// itemLink prefers the RSS <link> text / Atom alternate link, then any other link.
func itemLink(item *gofeed.Item) string {
	if l := strings.TrimSpace(item.Link); l != "" {
		return l
	}
	for _, l := range item.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}

// OriginalLink scans an aggregator's HTML description for the first anchor
// pointing outside aggregatorHost, falling back to the first bare URL in the text.
func OriginalLink(description, aggregatorHost string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err == nil {
		var found string
		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href := strings.TrimSpace(a.AttrOr("href", ""))
			if !IsAbsoluteURL(href) {
				return true
			}
			u, err := url.Parse(href)
			if err != nil || strings.EqualFold(u.Hostname(), aggregatorHost) {
				return true
			}
			found = href
			return false
		})
		if found != "" {
			return found
		}
	}

	return bareURLRe.FindString(description)
}

// IsAbsoluteURL reports whether s is an absolute http or https URL with a host.
func IsAbsoluteURL(s string) bool {
	if !absoluteURLRe.MatchString(s) {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}
