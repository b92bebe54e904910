// Package scraper turns an article page into plain text for the summarizer.
package scraper

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/deusflow/memeday/internal/textnorm"
)

// minReadableRunes is the shortest readability result we trust over the selector fallback.
const minReadableRunes = 200

// ExtractText returns the article body of page as normalized text. It tries
// readability first, then common article selectors, then strips the whole
// document. pageURL may be empty.
func ExtractText(page, pageURL string) string {
	if strings.TrimSpace(page) == "" {
		return ""
	}

	if text := extractReadable(page, pageURL); utf8.RuneCountInString(text) >= minReadableRunes {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err == nil {
		if text := textnorm.Clean(extractGenericContent(doc)); text != "" {
			return text
		}
	}

	return textnorm.Clean(page)
}

func extractReadable(page, pageURL string) string {
	var base *url.URL
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			base = u
		}
	}

	article, err := readability.FromReader(strings.NewReader(page), base)
	if err != nil {
		return ""
	}
	return textnorm.Clean(article.TextContent)
}

// extractGenericContent collects paragraph text from the usual article containers.
func extractGenericContent(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, footer, aside, form").Remove()

	var best []string

	selectors := []string{
		"article p",
		".article p",
		".content p",
		".post-content p",
		".entry-content p",
		"main p",
		"#content p",
		".text p",
		"p",
	}

	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if utf8.RuneCountInString(text) > 20 && !isJunk(text) {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > len(best) {
			best = paragraphs
		}
		if len(best) >= 3 { // enough for a summary
			break
		}
	}

	return strings.Join(best, "\n\n")
}

var junkIndicators = []string{
	"cookie", "lgpd", "assine", "newsletter", "leia também",
	"leia mais", "clique aqui", "siga-nos", "compartilhe", "publicidade",
}

func isJunk(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range junkIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
