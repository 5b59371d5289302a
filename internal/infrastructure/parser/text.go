package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockElements = "p, div, li, h1, h2, h3, h4, h5, h6, br, tr, blockquote"

// PlainText flattens a body fragment to text, one line per block element.
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
