package telegram

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FlattenHTML reduces an HTML fragment in a reply to plain text so it renders
// sanely in Telegram. Text without markup passes through unchanged.
func FlattenHTML(text string) string {
	if !strings.Contains(text, "<") || !strings.Contains(text, ">") {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}

	// Line breaks for block-level boundaries before flattening.
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	flat := strings.TrimSpace(doc.Text())
	if flat == "" {
		return text
	}
	return flat
}
