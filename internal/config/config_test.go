package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/deusflow/memeday/internal/rss"
)

var envKeys = []string{
	"SOURCES_CONFIG_PATH", "REQUEST_TIMEOUT_MS", "IMAGE_TIMEOUT_MS", "RETRY_ATTEMPTS",
	"RETRY_DELAY_MS", "RACE_FEEDS", "MAX_SUMMARY_SENTENCES", "SUMMARY_MAX_CHARS",
	"IMAGE_WIDTH", "IMAGE_HEIGHT", "GEMINI_API_KEY", "MEMEDAY_MODE", "HTTP_PORT",
	"CACHE_TTL_MINUTES", "REFRESH_AT", "TIMEZONE", "DEBUG", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS",
	"GEMINI_MAX_REQUESTS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	assert.Equal(t, err, nil)
	assert.Equal(t, cfg.SourcesConfigPath, "configs/sources.yaml")
	assert.Equal(t, cfg.RequestTimeout, 8*time.Second)
	assert.Equal(t, cfg.ImageTimeout, 6*time.Second)
	assert.Equal(t, cfg.RetryAttempts, 3)
	assert.Equal(t, cfg.RetryDelay, time.Second)
	assert.Equal(t, cfg.RaceFeeds, false)
	assert.Equal(t, cfg.MaxSummarySentences, 3)
	assert.Equal(t, cfg.SummaryMaxChars, 8000)
	assert.Equal(t, cfg.ImageWidth, 1280)
	assert.Equal(t, cfg.ImageHeight, 720)
	assert.Equal(t, cfg.Mode, ModeOnce)
	assert.Equal(t, cfg.HTTPPort, 8080)
	assert.Equal(t, cfg.CacheTTL, time.Hour)
	assert.Equal(t, cfg.RefreshAt, "06:00")
	assert.Equal(t, cfg.Timezone, "America/Sao_Paulo")
	assert.Equal(t, len(cfg.AllowedOrigins), 0)
	assert.Equal(t, cfg.GeminiMaxRequests, 20)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEMEDAY_MODE", "Serve")
	t.Setenv("REQUEST_TIMEOUT_MS", "2500")
	t.Setenv("RACE_FEEDS", "true")
	t.Setenv("MAX_SUMMARY_SENTENCES", "5")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RETRY_ATTEMPTS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://memeday.com.br, ,http://localhost:3000")

	cfg, err := Load()

	assert.Equal(t, err, nil)
	assert.Equal(t, cfg.Mode, ModeServe)
	assert.Equal(t, cfg.RequestTimeout, 2500*time.Millisecond)
	assert.Equal(t, cfg.RaceFeeds, true)
	assert.Equal(t, cfg.MaxSummarySentences, 5)
	assert.Equal(t, cfg.HTTPPort, 9090)
	assert.Equal(t, cfg.RetryAttempts, 3)
	assert.Equal(t, cfg.AllowedOrigins, []string{"https://memeday.com.br", "http://localhost:3000"})
}

func TestLoad_InvalidMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEMEDAY_MODE", "daemon")

	_, err := Load()
	assert.NotEqual(t, err, nil)
}

func TestValidate_Bounds(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	assert.Equal(t, err, nil)

	bad := *cfg
	bad.MaxSummarySentences = 0
	assert.NotEqual(t, bad.Validate(), nil)

	bad = *cfg
	bad.RequestTimeout = 0
	assert.NotEqual(t, bad.Validate(), nil)

	bad = *cfg
	bad.Mode = ModeServe
	bad.HTTPPort = 70000
	assert.NotEqual(t, bad.Validate(), nil)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write sources: %v", err)
	}
	return path
}

func TestLoadSources_MissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Equal(t, err, nil)
	assert.Equal(t, s.FeedSources(), rss.DefaultSources())
	assert.Equal(t, len(s.Strategies()), 5)
	assert.Equal(t, s.Strategies()[0].Name, "direct")
	assert.Equal(t, len(s.ImageBuilders()), 3)
}

func TestLoadSources_File(t *testing.T) {
	path := writeFile(t, `
feeds:
  - name: Folha
    url: https://feeds.folha.uol.com.br/emcimadahora/rss091.xml
  - name: Busca
    url: https://news.google.com/rss/search?q={query}
    query: meme do dia
    extract_original_link: true
proxies:
  - name: direct
    template: "{raw}"
  - name: allorigins
    template: https://api.allorigins.win/get?url={url}
    envelope: allorigins
images:
  - name: picsum
    template: https://picsum.photos/seed/{slug}/{width}/{height}
`)

	s, err := LoadSources(path)
	assert.Equal(t, err, nil)

	feeds := s.FeedSources()
	assert.Equal(t, len(feeds), 2)
	assert.Equal(t, feeds[1].Endpoint(), "https://news.google.com/rss/search?q=meme+do+dia")
	assert.Equal(t, feeds[1].ExtractOriginalLink, true)

	strategies := s.Strategies()
	assert.Equal(t, len(strategies), 2)
	assert.Equal(t, strategies[0].Transform("https://g1.globo.com/x?a=1"), "https://g1.globo.com/x?a=1")
	assert.Equal(t, strategies[0].Decode == nil, true)
	assert.Equal(t, strategies[1].Transform("https://g1.globo.com/x"), "https://api.allorigins.win/get?url=https%3A%2F%2Fg1.globo.com%2Fx")
	assert.Equal(t, strategies[1].Decode != nil, true)

	builders := s.ImageBuilders()
	assert.Equal(t, len(builders), 1)
	assert.Equal(t, builders[0].Name, "picsum")
}

func TestLoadSources_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "feeds: [\n"},
		{name: "feed without url", content: "feeds:\n  - name: X\n"},
		{name: "unknown kind", content: "feeds:\n  - name: X\n    url: https://x\n    kind: json\n"},
		{name: "proxy without placeholder", content: "proxies:\n  - name: p\n    template: https://proxy\n"},
		{name: "image without template", content: "images:\n  - name: i\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSources(writeFile(t, tt.content))
			assert.NotEqual(t, err, nil)
		})
	}
}
