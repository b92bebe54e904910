package image

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/deusflow/memeday/internal/textnorm"
)

// Dimensions of the requested cover image.
type Dimensions struct {
	Width  int
	Height int
}

var DefaultDimensions = Dimensions{Width: 1280, Height: 720}

// Seed feeds the candidate builders. Text is the headline; Prompt is the
// (possibly refined) scene description used by generators.
type Seed struct {
	Text   string
	Prompt string
}

// CandidateBuilder derives one image URL from a seed.
type CandidateBuilder struct {
	Name  string
	Build func(seed Seed, dims Dimensions) string
}

// Template builds a CandidateBuilder from a URL template. Supported placeholders:
// {prompt} (path-escaped prompt), {keywords} (comma-separated headline keywords),
// {slug} (hyphen-joined keywords), {width} and {height}.
func Template(name, template string) CandidateBuilder {
	return CandidateBuilder{
		Name: name,
		Build: func(seed Seed, dims Dimensions) string {
			kw := Keywords(seed.Text, 3)
			if len(kw) == 0 {
				kw = []string{"news"}
			}
			prompt := seed.Prompt
			if prompt == "" {
				prompt = seed.Text
			}
			r := strings.NewReplacer(
				"{prompt}", url.PathEscape(prompt),
				"{keywords}", strings.Join(kw, ","),
				"{slug}", strings.Join(kw, "-"),
				"{width}", strconv.Itoa(dims.Width),
				"{height}", strconv.Itoa(dims.Height),
			)
			return r.Replace(template)
		},
	}
}

func Pollinations() CandidateBuilder {
	return Template("pollinations", "https://image.pollinations.ai/prompt/{prompt}?width={width}&height={height}&nologo=true")
}

func LoremFlickr() CandidateBuilder {
	return Template("loremflickr", "https://loremflickr.com/{width}/{height}/{keywords}")
}

func Picsum() CandidateBuilder {
	return Template("picsum", "https://picsum.photos/seed/{slug}/{width}/{height}")
}

// DefaultBuilders is generator first, then keyword search, then a seeded stock photo.
func DefaultBuilders() []CandidateBuilder {
	return []CandidateBuilder{Pollinations(), LoremFlickr(), Picsum()}
}

var stopwords = textnorm.StopwordSet(textnorm.PortugueseStopwords)

// Keywords returns up to n distinct normalized words of at least four letters, in order.
func Keywords(text string, n int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range textnorm.Words(text) {
		if len(out) >= n {
			break
		}
		if utf8.RuneCountInString(w) < 4 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// BuildPrompt composes the generator prompt from the headline and summary.
func BuildPrompt(title, summary string) string {
	parts := []string{
		strings.TrimSpace(title),
		strings.TrimSpace(summary),
		"Ilustração digital flat, cores quentes e alto contraste, estilo Meme Day.",
		"Composição centrada, limpa, sem texto na imagem, visual moderno.",
	}
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// shorter drops the last word of the prompt, or of the text once the prompt is a single word.
func (s Seed) shorter() (Seed, bool) {
	if words := strings.Fields(s.Prompt); len(words) > 1 {
		s.Prompt = strings.Join(words[:len(words)-1], " ")
		return s, true
	}
	if words := strings.Fields(s.Text); len(words) > 1 {
		s.Text = strings.Join(words[:len(words)-1], " ")
		return s, true
	}
	return s, false
}

// fit builds a candidate no longer than maxBytes, trimming the seed as needed.
func fit(b CandidateBuilder, seed Seed, dims Dimensions, maxBytes int) (string, bool) {
	u := b.Build(seed, dims)
	for maxBytes > 0 && len(u) > maxBytes {
		next, ok := seed.shorter()
		if !ok {
			return "", false
		}
		seed = next
		u = b.Build(seed, dims)
	}
	return u, u != ""
}
