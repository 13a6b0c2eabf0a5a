// Package summary turns the markdown produced by a summarize call into sanitized HTML,
// a heading outline and plain text.
package summary

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// ErrEmpty is returned for blank markdown.
var ErrEmpty = errors.New("summary: empty markdown")

// Heading is one entry of the outline.
type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id,omitempty"`
	Text  string `json:"text"`
}

// Document is a rendered summary.
type Document struct {
	Markdown string    `json:"markdown"`
	HTML     string    `json:"html"`
	Text     string    `json:"text"`
	Outline  []Heading `json:"outline"`
}

var policy = bluemonday.UGCPolicy()

// Render converts markdown to sanitized HTML and extracts the h1-h3 outline.
func Render(md string) (Document, error) {
	md = strings.TrimSpace(md)
	if md == "" {
		return Document{}, ErrEmpty
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	safe := policy.SanitizeBytes(markdown.Render(doc, renderer))

	dom, err := goquery.NewDocumentFromReader(bytes.NewReader(safe))
	if err != nil {
		return Document{}, fmt.Errorf("summary: parse rendered html: %w", err)
	}

	var outline []Heading
	dom.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		outline = append(outline, Heading{
			Level: int(goquery.NodeName(s)[1] - '0'),
			ID:    id,
			Text:  strings.TrimSpace(s.Text()),
		})
	})

	return Document{
		Markdown: md,
		HTML:     string(safe),
		Text:     plainText(dom),
		Outline:  outline,
	}, nil
}

// plainText joins the text of block elements with newlines.
func plainText(dom *goquery.Document) string {
	var lines []string
	dom.Find("h1, h2, h3, h4, h5, h6, p, li, pre").Each(func(_ int, s *goquery.Selection) {
		// List items that wrap paragraphs are visited through the paragraph.
		if goquery.NodeName(s) == "li" && s.Children().Filter("p").Length() > 0 {
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	return strings.Join(lines, "\n")
}
