// Package config loads runtime settings from the environment and the source lists from YAML.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ModeOnce  = "once"
	ModeServe = "serve"
)

type Config struct {
	// Sources
	SourcesConfigPath string

	// Network
	RequestTimeout time.Duration
	ImageTimeout   time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	RaceFeeds      bool

	// Summary
	MaxSummarySentences int
	SummaryMaxChars     int

	// Image
	ImageWidth        int
	ImageHeight       int
	GeminiAPIKey      string // optional, enables prompt refinement
	GeminiMaxRequests int    // per day, 0 = unlimited

	// App settings
	Mode           string // "once" or "serve"
	HTTPPort       int
	AllowedOrigins []string // empty allows any origin
	CacheTTL       time.Duration
	RefreshAt      string // HH:MM
	Timezone       string
	Debug          bool
	LogFormat      string
}

func Load() (*Config, error) {
	cfg := &Config{
		SourcesConfigPath:   getEnvOrDefault("SOURCES_CONFIG_PATH", "configs/sources.yaml"),
		RequestTimeout:      time.Duration(getEnvIntOrDefault("REQUEST_TIMEOUT_MS", 8000)) * time.Millisecond,
		ImageTimeout:        time.Duration(getEnvIntOrDefault("IMAGE_TIMEOUT_MS", 6000)) * time.Millisecond,
		RetryAttempts:       getEnvIntOrDefault("RETRY_ATTEMPTS", 3),
		RetryDelay:          time.Duration(getEnvIntOrDefault("RETRY_DELAY_MS", 1000)) * time.Millisecond,
		RaceFeeds:           getEnvBoolOrDefault("RACE_FEEDS", false),
		MaxSummarySentences: getEnvIntOrDefault("MAX_SUMMARY_SENTENCES", 3),
		SummaryMaxChars:     getEnvIntOrDefault("SUMMARY_MAX_CHARS", 8000),
		ImageWidth:          getEnvIntOrDefault("IMAGE_WIDTH", 1280),
		ImageHeight:         getEnvIntOrDefault("IMAGE_HEIGHT", 720),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiMaxRequests:   getEnvIntOrDefault("GEMINI_MAX_REQUESTS", 20),
		Mode:                strings.ToLower(getEnvOrDefault("MEMEDAY_MODE", ModeOnce)),
		HTTPPort:            getEnvIntOrDefault("HTTP_PORT", 8080),
		AllowedOrigins:      getEnvListOrDefault("CORS_ALLOWED_ORIGINS", nil),
		CacheTTL:            time.Duration(getEnvIntOrDefault("CACHE_TTL_MINUTES", 60)) * time.Minute,
		RefreshAt:           getEnvOrDefault("REFRESH_AT", "06:00"),
		Timezone:            getEnvOrDefault("TIMEZONE", "America/Sao_Paulo"),
		Debug:               getEnvBoolOrDefault("DEBUG", false),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "text"),
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.Mode != ModeOnce && c.Mode != ModeServe {
		return fmt.Errorf("MEMEDAY_MODE must be '%s' or '%s'", ModeOnce, ModeServe)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_MS must be positive")
	}
	if c.ImageTimeout <= 0 {
		return fmt.Errorf("IMAGE_TIMEOUT_MS must be positive")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("RETRY_DELAY_MS must not be negative")
	}
	if c.MaxSummarySentences < 1 {
		return fmt.Errorf("MAX_SUMMARY_SENTENCES must be at least 1")
	}
	if c.SummaryMaxChars < 1 {
		return fmt.Errorf("SUMMARY_MAX_CHARS must be positive")
	}
	if c.ImageWidth < 1 || c.ImageHeight < 1 {
		return fmt.Errorf("IMAGE_WIDTH and IMAGE_HEIGHT must be positive")
	}
	if c.GeminiMaxRequests < 0 {
		return fmt.Errorf("GEMINI_MAX_REQUESTS must not be negative")
	}
	if c.Mode == ModeServe {
		if c.HTTPPort < 1 || c.HTTPPort > 65535 {
			return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
		}
		if c.CacheTTL <= 0 {
			return fmt.Errorf("CACHE_TTL_MINUTES must be positive")
		}
	}
	return nil
}
