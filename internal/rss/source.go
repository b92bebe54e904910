package rss

import (
	"net/url"
	"strings"
)

// Kind is the feed format a source is expected to serve. gofeed detects the
// real format on its own; a mismatch is only logged.
type Kind string

const (
	KindRSS  Kind = "rss"
	KindAtom Kind = "atom"
)

// Matches reports whether a detected gofeed FeedType agrees with k. An empty kind matches anything.
func (k Kind) Matches(feedType string) bool {
	return k == "" || strings.EqualFold(string(k), feedType)
}

// FeedSource is one configured feed, in priority order.
type FeedSource struct {
	Name string `yaml:"name"`
	// URL may contain a {query} placeholder, filled from Query.
	URL   string `yaml:"url"`
	Query string `yaml:"query"`
	Kind  Kind   `yaml:"kind"`
	// ExtractOriginalLink marks aggregators (Google News) whose item description
	// embeds the publisher's link.
	ExtractOriginalLink bool `yaml:"extract_original_link"`
}

// Endpoint returns the feed URL with the query substituted.
func (s FeedSource) Endpoint() string {
	if !strings.Contains(s.URL, "{query}") {
		return s.URL
	}
	return strings.ReplaceAll(s.URL, "{query}", url.QueryEscape(s.Query))
}

// Host is the lowercase host of the endpoint, or "" when it cannot be parsed.
func (s FeedSource) Host() string {
	u, err := url.Parse(s.Endpoint())
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// NewsItem is the headline chosen for the day.
type NewsItem struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	SourceName string `json:"source"`
}

// DefaultSources is G1 "mais lidas", then UOL, then Google News Brazil.
func DefaultSources() []FeedSource {
	return []FeedSource{
		{Name: "G1", URL: "https://g1.globo.com/dynamo/mais-lidas/rss2.xml", Kind: KindRSS},
		{Name: "UOL", URL: "https://noticias.uol.com.br/ultimas/index.xml", Kind: KindRSS},
		{
			Name:                "Google News",
			URL:                 "https://news.google.com/rss?hl=pt-BR&gl=BR&ceid=BR:pt-419",
			Kind:                KindRSS,
			ExtractOriginalLink: true,
		},
	}
}
