package source

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is the readable part of an HTML document.
type Page struct {
	Title       string
	Description string
	Body        string
}

// Text joins title, description and body into classifier input.
func (p Page) Text() string {
	var parts []string
	for _, s := range []string{p.Title, p.Description, p.Body} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// nonContentSelectors lists elements to strip before extracting body text.
const nonContentSelectors = "script, style, noscript, template, nav, header, footer, aside, form, iframe"

// mainContentSelectors are tried in order before falling back to <body>.
var mainContentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	".content",
	".post-content",
	".entry-content",
	"#content",
}

// ExtractHTML parses html and pulls out the title, meta description and
// main content text.
func ExtractHTML(html []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}
	return Page{
		Title:       pageTitle(doc),
		Description: metaDescription(doc),
		Body:        bodyText(doc),
	}, nil
}

func pageTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func metaDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find("meta[name='description']").Attr("content"); ok {
		return strings.TrimSpace(desc)
	}
	if og, ok := doc.Find("meta[property='og:description']").Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return ""
}

func bodyText(doc *goquery.Document) string {
	doc.Find(nonContentSelectors).Remove()
	for _, sel := range mainContentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			if text := collapse(s.Text()); text != "" {
				return text
			}
		}
	}
	return collapse(doc.Find("body").First().Text())
}

// collapse trims every line and drops blank ones.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
