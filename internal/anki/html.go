package anki

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText strips markup from an Anki field value. Line breaks and block
// boundaries become spaces and runs of whitespace collapse to one.
func PlainText(value string) string {
	if !strings.ContainsAny(value, "<&") {
		return strings.Join(strings.Fields(value), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(value))
	if err != nil {
		return strings.Join(strings.Fields(value), " ")
	}
	doc.Find("script, style").Remove()
	doc.Find("br, div, p, li").Each(func(_ int, s *goquery.Selection) {
		s.BeforeHtml(" ")
		s.AfterHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}
