// Package textnorm turns raw article HTML into plain text and folds words into
// the accent-free form used for frequency counting.
package textnorm

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	scriptRe   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe    = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptRe = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	commentRe  = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Clean strips script/style/noscript blocks, comments and tags from raw HTML,
// decodes entities and collapses whitespace. Empty input yields "".
func Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	s := scriptRe.ReplaceAllString(raw, " ")
	s = styleRe.ReplaceAllString(s, " ")
	s = noscriptRe.ReplaceAllString(s, " ")
	s = commentRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	// &nbsp; decodes to U+00A0, which \s does not match
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = spaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// NormalizeWord lowercases token and removes diacritics, so "Ação" and "acao" compare equal.
func NormalizeWord(token string) string {
	if token == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(token))
	if err != nil {
		return strings.ToLower(token)
	}
	return out
}

// Words splits text on anything that is not a letter or digit and returns the
// normalized, non-empty tokens in order.
func Words(text string) []string {
	folded := NormalizeWord(text)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

// PortugueseStopwords are skipped when counting word frequencies.
var PortugueseStopwords = []string{
	"de", "da", "do", "em", "para", "com", "que", "um", "uma", "uns", "umas",
	"os", "as", "e", "o", "a", "no", "na", "nos", "nas", "por", "se", "ao", "aos",
	"dos", "das", "é", "foi", "são", "ser", "tem", "há", "como", "mais", "menos",
	"já", "também", "entre", "sobre", "até", "após", "antes", "durante",
}

// StopwordSet normalizes words into a lookup set, so "é" and "e" share an entry.
func StopwordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if n := NormalizeWord(strings.TrimSpace(w)); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
