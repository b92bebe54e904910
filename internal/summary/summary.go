// Package summary builds short extractive summaries: it ranks the sentences of
// an article by word frequency and returns the best ones in document order.
package summary

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/deusflow/memeday/internal/textnorm"
)

// Unavailable is returned instead of an empty summary.
const Unavailable = "Resumo indisponível no momento."

// DefaultMaxSentences is used when Summarize is asked for zero or fewer sentences.
const DefaultMaxSentences = 3

// Options tunes the heuristics. Zero or negative numeric fields fall back to
// their defaults, except Bonus where only a negative value does; zero disables it.
type Options struct {
	MaxChars         int     // input is cut to this many runes before splitting
	MinSentenceRunes int     // shorter sentences are treated as boilerplate
	BonusMinWords    int     // readable band, inclusive
	BonusMaxWords    int     // readable band, inclusive
	Bonus            float64 // flat score added to sentences inside the band
	Stopwords        []string
}

// DefaultOptions returns the tuning used by the package-level Summarize.
func DefaultOptions() Options {
	return Options{
		MaxChars:         8000,
		MinSentenceRunes: 20,
		BonusMinWords:    8,
		BonusMaxWords:    30,
		Bonus:            0.5,
		Stopwords:        textnorm.PortugueseStopwords,
	}
}

// Summarizer is safe for concurrent use; nothing is shared between calls.
type Summarizer struct {
	opts      Options
	stopwords map[string]struct{}
}

// New fills unset fields of opts from DefaultOptions.
func New(opts Options) *Summarizer {
	def := DefaultOptions()
	if opts.MaxChars <= 0 {
		opts.MaxChars = def.MaxChars
	}
	if opts.MinSentenceRunes <= 0 {
		opts.MinSentenceRunes = def.MinSentenceRunes
	}
	if opts.BonusMinWords <= 0 {
		opts.BonusMinWords = def.BonusMinWords
	}
	if opts.BonusMaxWords <= 0 {
		opts.BonusMaxWords = def.BonusMaxWords
	}
	if opts.Bonus < 0 {
		opts.Bonus = def.Bonus
	}
	if opts.Stopwords == nil {
		opts.Stopwords = def.Stopwords
	}

	return &Summarizer{opts: opts, stopwords: textnorm.StopwordSet(opts.Stopwords)}
}

type sentenceScore struct {
	text  string
	index int
	score float64
}

// Summarize returns up to maxSentences sentences of text (3 when maxSentences <= 0),
// always ending in terminal punctuation.
func (s *Summarizer) Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}

	text = strings.TrimSpace(truncateRunes(text, s.opts.MaxChars))
	if text == "" {
		return Unavailable
	}

	all := SplitSentences(text)
	sentences := make([]string, 0, len(all))
	for _, sentence := range all {
		if utf8.RuneCountInString(sentence) >= s.opts.MinSentenceRunes {
			sentences = append(sentences, sentence)
		}
	}

	if len(sentences) == 0 {
		// nothing long enough; keep the leading fragments rather than nothing
		if len(all) > maxSentences {
			all = all[:maxSentences]
		}
		return punctuate(strings.Join(all, " "))
	}

	if len(sentences) <= maxSentences {
		return punctuate(strings.Join(sentences, " "))
	}

	freq := s.frequencies(sentences)

	scored := make([]sentenceScore, len(sentences))
	for i, sentence := range sentences {
		scored[i] = sentenceScore{text: sentence, index: i, score: s.score(sentence, freq)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	best := scored[:maxSentences]
	sort.Slice(best, func(i, j int) bool {
		return best[i].index < best[j].index
	})

	picked := make([]string, len(best))
	for i, b := range best {
		picked[i] = b.text
	}
	return punctuate(strings.Join(picked, " "))
}

// SummarizeHTML cleans raw HTML before summarizing it.
func (s *Summarizer) SummarizeHTML(raw string, maxSentences int) string {
	return s.Summarize(textnorm.Clean(raw), maxSentences)
}

func (s *Summarizer) frequencies(sentences []string) map[string]int {
	freq := make(map[string]int)
	for _, sentence := range sentences {
		for _, w := range textnorm.Words(sentence) {
			if _, stop := s.stopwords[w]; stop {
				continue
			}
			freq[w]++
		}
	}
	return freq
}

func (s *Summarizer) score(sentence string, freq map[string]int) float64 {
	var score float64
	for _, w := range textnorm.Words(sentence) {
		score += float64(freq[w])
	}
	if n := len(strings.Fields(sentence)); n >= s.opts.BonusMinWords && n <= s.opts.BonusMaxWords {
		score += s.opts.Bonus
	}
	return score
}

// SplitSentences cuts text at whitespace that directly follows '.', '!' or '?'.
// The punctuation stays with the sentence it ends.
func SplitSentences(text string) []string {
	var (
		sentences []string
		start     int
		prev      rune
	)
	for i, r := range text {
		if unicode.IsSpace(r) && isTerminal(prev) {
			if part := strings.TrimSpace(text[start:i]); part != "" {
				sentences = append(sentences, part)
			}
			start = i
		}
		prev = r
	}
	if part := strings.TrimSpace(text[start:]); part != "" {
		sentences = append(sentences, part)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func punctuate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unavailable
	}
	last, _ := utf8.DecodeLastRuneInString(s)
	if isTerminal(last) {
		return s
	}
	return s + "."
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// Summarize uses the default options.
func Summarize(text string, maxSentences int) string {
	return New(DefaultOptions()).Summarize(text, maxSentences)
}
