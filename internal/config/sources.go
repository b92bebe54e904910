package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/memeday/internal/fetch"
	"github.com/deusflow/memeday/internal/image"
	"github.com/deusflow/memeday/internal/rss"
)

// ProxyConfig describes one fetch strategy. Template holds {url} or {raw}.
type ProxyConfig struct {
	Name     string `yaml:"name"`
	Template string `yaml:"template"`
	Envelope string `yaml:"envelope"`
}

// ImageConfig describes one image candidate builder.
type ImageConfig struct {
	Name     string `yaml:"name"`
	Template string `yaml:"template"`
}

// Sources is the content of configs/sources.yaml. Empty lists mean built-in defaults.
type Sources struct {
	Feeds   []rss.FeedSource `yaml:"feeds"`
	Proxies []ProxyConfig    `yaml:"proxies"`
	Images  []ImageConfig    `yaml:"images"`
}

// LoadSources reads the YAML source lists. A missing file is not an error.
func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Sources{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var s Sources
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse sources YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sources file %s: %w", path, err)
	}
	return &s, nil
}

func (s *Sources) Validate() error {
	for i, f := range s.Feeds {
		if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.URL) == "" {
			return fmt.Errorf("feed #%d needs name and url", i+1)
		}
		if f.Kind != "" && f.Kind != rss.KindRSS && f.Kind != rss.KindAtom {
			return fmt.Errorf("feed %q has unknown kind %q", f.Name, f.Kind)
		}
	}
	for i, p := range s.Proxies {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("proxy #%d needs a name", i+1)
		}
		if !strings.Contains(p.Template, "{url}") && !strings.Contains(p.Template, "{raw}") {
			return fmt.Errorf("proxy %q template must contain {url} or {raw}", p.Name)
		}
	}
	for i, img := range s.Images {
		if strings.TrimSpace(img.Name) == "" || strings.TrimSpace(img.Template) == "" {
			return fmt.Errorf("image #%d needs name and template", i+1)
		}
	}
	return nil
}

// FeedSources returns the configured feeds, or rss.DefaultSources.
func (s *Sources) FeedSources() []rss.FeedSource {
	if s == nil || len(s.Feeds) == 0 {
		return rss.DefaultSources()
	}
	out := make([]rss.FeedSource, len(s.Feeds))
	copy(out, s.Feeds)
	return out
}

// Strategies returns the configured proxies in order, or fetch.DefaultStrategies.
func (s *Sources) Strategies() []fetch.Strategy {
	if s == nil || len(s.Proxies) == 0 {
		return fetch.DefaultStrategies()
	}
	out := make([]fetch.Strategy, 0, len(s.Proxies))
	for _, p := range s.Proxies {
		out = append(out, fetch.Template(p.Name, p.Template, fetch.Envelope(p.Envelope)))
	}
	return out
}

// ImageBuilders returns the configured image candidates, or image.DefaultBuilders.
func (s *Sources) ImageBuilders() []image.CandidateBuilder {
	if s == nil || len(s.Images) == 0 {
		return image.DefaultBuilders()
	}
	out := make([]image.CandidateBuilder, 0, len(s.Images))
	for _, img := range s.Images {
		out = append(out, image.Template(img.Name, img.Template))
	}
	return out
}
