package parse

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"sitecrawl/pkg/models"
	"sitecrawl/pkg/utils"
)

const (
	// MaxLinkTextLen caps anchor/alt text stored per reference.
	MaxLinkTextLen = 200
	// MaxURLLen caps stored absolute URLs.
	MaxURLLen = 500
)

// PageParser extracts title, links, and image references from fetched HTML.
type PageParser struct {
	log *logrus.Entry
}

// NewPageParser creates a PageParser.
func NewPageParser(log *logrus.Entry) *PageParser {
	return &PageParser{log: log}
}

// ParsePage parses body into a PageResult. It never fails on malformed
// markup at element granularity: any per-element extraction problem skips
// that element and increments SkippedElements, never aborting the page.
func (p *PageParser) ParsePage(body []byte, pageURL *url.URL) models.PageResult {
	result := models.PageResult{SourceURL: pageURL.String()}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		p.log.WithField("url", pageURL.String()).Warnf("HTML document parse failed: %v", err)
		result.FailureReason = utils.CategorizeError(utils.ErrParse)
		return result
	}

	result.Title = strings.TrimSpace(doc.Find("title").First().Text())
	result.Links = p.extractLinks(doc, pageURL, &result.SkippedElements)
	result.Images = p.extractImages(doc, pageURL, &result.SkippedElements)
	result.Success = true
	return result
}

// extractLinks collects anchors with resolvable, non-placeholder hrefs.
func (p *PageParser) extractLinks(doc *goquery.Document, pageURL *url.URL, skipped *int) []models.LinkRef {
	var links []models.LinkRef
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if isPlaceholderHref(href) {
			return
		}

		// Resolve relative URLs against the page's own URL, not the crawl seed.
		resolved, err := pageURL.Parse(href)
		if err != nil {
			p.log.Debugf("Skipping unparseable href '%s': %v", href, err)
			*skipped++
			return
		}
		absURL := utils.TruncateRunes(resolved.String(), MaxURLLen)

		text := strings.TrimSpace(sel.Text())
		if text == "" {
			text = DisplayTextFallback(absURL)
		}

		links = append(links, models.LinkRef{
			Text:       utils.TruncateRunes(text, MaxLinkTextLen),
			URL:        absURL,
			SourcePage: pageURL.String(),
		})
	})
	return links
}

// extractImages collects img tags that carry a src attribute.
func (p *PageParser) extractImages(doc *goquery.Document, pageURL *url.URL, skipped *int) []models.ImageRef {
	var images []models.ImageRef
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, exists := sel.Attr("src")
		src = strings.TrimSpace(src)
		if !exists || src == "" {
			return
		}

		resolved, err := pageURL.Parse(src)
		if err != nil {
			p.log.Debugf("Skipping unparseable img src '%s': %v", src, err)
			*skipped++
			return
		}

		alt := strings.TrimSpace(sel.AttrOr("alt", ""))
		title := alt
		if title == "" {
			title = strings.TrimSpace(sel.AttrOr("title", ""))
		}
		if title == "" {
			title = "Image"
		}

		images = append(images, models.ImageRef{
			URL:   utils.TruncateRunes(resolved.String(), MaxURLLen),
			Title: utils.TruncateRunes(title, MaxLinkTextLen),
			Alt:   utils.TruncateRunes(alt, MaxLinkTextLen),
		})
	})
	return images
}

// isPlaceholderHref reports whether href is empty, a bare fragment, or a
// javascript: pseudo-URL, none of which name a fetchable resource.
func isPlaceholderHref(href string) bool {
	if href == "" || href == "#" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(href), "javascript:")
}

// DisplayTextFallback derives link text from the last path segment of a URL,
// falling back to the URL itself for root paths.
func DisplayTextFallback(absURL string) string {
	trimmed := strings.TrimRight(absURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	// A preceding slash means this "segment" is the host after the scheme's
	// double slash, so there was no path at all.
	if idx > 0 && trimmed[idx-1] != '/' {
		return trimmed[idx+1:]
	}
	return absURL
}
