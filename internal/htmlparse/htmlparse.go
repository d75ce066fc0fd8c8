// Package htmlparse extracts a page's title, visible text, and outbound
// links from raw HTML. It follows the teacher's GoqueryParser
// (crawler/fetcher/parser.go) for traversal style, but returns raw href
// strings instead of resolved *url.URL values — resolution, scheme
// filtering, and canonicalization are the crawl coordinator's job per
// spec.md §4.6, so this package stays a pure extraction collaborator per
// spec.md §2.
package htmlparse

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page holds the pieces of a document the coordinator needs: its title,
// extracted visible text, and the raw (unresolved) hrefs found in anchor
// and canonical-link tags.
type Page struct {
	Title string
	Text  string
	Links []string
}

// excludedExtensions mirrors the teacher's ExcludeExtensions default use:
// links to non-document assets are never worth queuing as crawl targets.
var excludedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".css": true, ".js": true, ".pdf": true, ".zip": true, ".ico": true,
}

// Parse reads HTML from r and extracts its title, text, and links.
func Parse(r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  extractText(doc),
		Links: extractLinks(doc),
	}, nil
}

// extractText concatenates visible body text, collapsing the whitespace
// goquery otherwise preserves from the source markup's indentation.
func extractText(doc *goquery.Document) string {
	doc.Find("script,style,noscript").Remove()
	fields := strings.Fields(doc.Find("body").Text())
	return strings.Join(fields, " ")
}

// extractLinks collects hrefs from anchor tags and <link rel="canonical">
// tags, skipping excluded asset extensions and de-duplicating within the
// page.
func extractLinks(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var links []string

	doc.Find("a,link").Each(func(i int, sel *goquery.Selection) {
		href, hasHref := sel.Attr("href")
		rel, hasRel := sel.Attr("rel")
		isAnchor := sel.Is("a") && hasHref
		isCanonical := sel.Is("link") && hasRel && rel == "canonical" && hasHref
		if !isAnchor && !isCanonical {
			return
		}
		if excludedExtensions[extensionOf(href)] {
			return
		}
		if seen[href] {
			return
		}
		seen[href] = true
		links = append(links, href)
	})
	return links
}

func extensionOf(href string) string {
	path := href
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if i := strings.LastIndex(path, "."); i >= 0 {
		return strings.ToLower(path[i:])
	}
	return ""
}
