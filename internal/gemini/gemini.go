// Package gemini refines image prompts with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/memeday/internal/cache"
	"github.com/deusflow/memeday/internal/logger"
	"github.com/deusflow/memeday/internal/ratelimit"
)

const (
	defaultModel    = "gemini-1.5-flash"
	maxSummaryRunes = 1200
	maxSceneRunes   = 400
	sceneTTL        = 24 * time.Hour
)

var ErrEmptyResponse = errors.New("no response from Gemini")

type Client struct {
	client *genai.Client
	model  string
	log    *slog.Logger
	budget *ratelimit.DailyBudget
	scenes *cache.Cache
}

type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = logger.Component(l, "gemini") }
}

// WithBudget caps Gemini calls per day.
func WithBudget(b *ratelimit.DailyBudget) Option { return func(c *Client) { c.budget = b } }

// WithSceneCache memoizes refined prompts per headline.
func WithSceneCache(sc *cache.Cache) Option { return func(c *Client) { c.scenes = sc } }

func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{client: client, model: defaultModel, log: logger.Component(nil, "gemini")}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// RefinePrompt turns a Portuguese headline into a short English scene
// description for an image generator.
func (c *Client) RefinePrompt(ctx context.Context, title, summary string) (string, error) {
	key := cache.Key(c.model, title, summary)
	if c.scenes != nil {
		if v, ok := c.scenes.Get(key); ok {
			return v.(string), nil
		}
	}

	if err := c.budget.Use(); err != nil {
		return "", err
	}

	model := c.client.GenerativeModel(c.model)

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(title, summary)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	scene, err := parseScene(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if err != nil {
		return "", err
	}
	c.log.Debug("prompt refined", "scene", scene, "budget_left", c.budget.Remaining())
	if c.scenes != nil {
		c.scenes.Set(key, scene, sceneTTL)
	}
	return scene, nil
}

func buildPrompt(title, summary string) string {
	return fmt.Sprintf(`Describe one illustration for this Brazilian news headline.

HEADLINE: %s
SUMMARY: %s

RULES:
- English, one sentence, at most 40 words.
- Concrete visual scene, flat digital illustration, warm colors.
- No text, letters, logos or real people's faces in the image.
- Answer strictly in the format below.

SCENE: <description>
`, sanitize(title, 200), sanitize(summary, maxSummaryRunes))
}

// sanitize collapses whitespace and cuts s to limit runes.
func sanitize(s string, limit int) string {
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, "\r", "")), " ")
	if utf8.RuneCountInString(s) > limit {
		s = string([]rune(s)[:limit])
	}
	return s
}

var (
	sceneLabel = regexp.MustCompile(`(?i)^\**\s*(scene|cena)\s*\**\s*:\s*`)
	markdown   = strings.NewReplacer("**", "", "`", "", "\"", "")
)

// parseScene extracts the SCENE line, or the first non-empty line when the
// label is missing.
func parseScene(response string) (string, error) {
	var first string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if loc := sceneLabel.FindStringIndex(line); loc != nil {
			return finishScene(line[loc[1]:])
		}
		if first == "" {
			first = line
		}
	}
	return finishScene(first)
}

func finishScene(s string) (string, error) {
	s = strings.TrimSpace(markdown.Replace(s))
	if s == "" {
		return "", ErrEmptyResponse
	}
	return sanitize(s, maxSceneRunes), nil
}
