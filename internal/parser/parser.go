// Package parser extracts a title and readable text from HTML documents.
package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelector picks the elements whose text forms the document body,
// one element per line.
const contentSelector = "body p, body h1, body h2, body h3, body h4, body h5, body h6, body li, body article"

// Result holds the output of parsing an HTML document.
type Result struct {
	Title string
	Text  string
}

// Parse extracts the title and body text from raw HTML. The title comes
// from the first <title> element ("Untitled" when absent or empty); body
// text comes from structural content elements, one per paragraph, falling
// back to the whole <body> text when nothing matches. Paragraphs are
// blank-line separated so the chunker can pack them.
func Parse(html string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parser: parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "Untitled"
	}

	var b strings.Builder
	doc.Find(contentSelector).Each(func(_ int, sel *goquery.Selection) {
		text := collapseWhitespace(sel.Text())
		if text == "" {
			return
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	})

	text := strings.TrimRight(b.String(), "\n")
	if strings.TrimSpace(text) == "" {
		text = collapseWhitespace(doc.Find("body").Text())
	}

	return &Result{Title: title, Text: text}, nil
}

// collapseWhitespace joins all whitespace runs (including newlines from
// nested elements) into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
