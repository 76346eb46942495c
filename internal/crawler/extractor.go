package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extraction is what ExtractLinks finds in a page.
type Extraction struct {
	// Title is the trimmed text of the first <title> element.
	Title string

	// Links are the valid absolute addresses of every <a href>, in
	// document order with duplicates removed.
	Links []string
}

// ExtractLinks parses content as HTML and returns the anchors resolved
// against base. Malformed markup is parsed on a best-effort basis; only
// an unparsable base address is an error.
func ExtractLinks(content, base string) (*Extraction, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAddress, base, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse content of %s: %w", base, err)
	}

	result := &Extraction{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Links: make([]string, 0),
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link := ResolveReference(baseURL, href)
		if !IsValidAddress(link) {
			return
		}
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		result.Links = append(result.Links, link)
	})

	return result, nil
}
