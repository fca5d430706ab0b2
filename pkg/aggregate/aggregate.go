package aggregate

import (
	"fmt"
	"time"

	"sitecrawl/pkg/models"
)

// Aggregator accumulates per-page results into the final report state.
// It is NOT safe for concurrent use: workers hand completed PageResults back
// to the scheduler, which merges them sequentially, so the merge step stays
// lock-free and trivially testable.
type Aggregator struct {
	maxLinks  int
	maxImages int

	links      []models.LinkRef
	images     []models.ImageRef
	seenLinks  map[string]bool
	seenImages map[string]bool

	rawLinks     int // Pre-dedup counts, reported in the summary
	rawImages    int
	pagesScraped int
	maxDepthSeen int
}

// New creates an Aggregator with the given dedup caps.
func New(maxLinks, maxImages int) *Aggregator {
	return &Aggregator{
		maxLinks:   maxLinks,
		maxImages:  maxImages,
		seenLinks:  make(map[string]bool),
		seenImages: make(map[string]bool),
	}
}

// MergePage folds one successful PageResult into the aggregate. Links and
// images are deduplicated by absolute URL in first-seen order; entries past
// the caps are counted but not kept. depth is the page's breadth-first depth.
func (a *Aggregator) MergePage(result models.PageResult, depth int) {
	a.pagesScraped++
	if depth > a.maxDepthSeen {
		a.maxDepthSeen = depth
	}

	for _, link := range result.Links {
		a.rawLinks++
		if link.URL == "" || a.seenLinks[link.URL] {
			continue
		}
		if len(a.links) >= a.maxLinks {
			continue
		}
		a.seenLinks[link.URL] = true
		a.links = append(a.links, link)
	}

	for _, img := range result.Images {
		a.rawImages++
		if img.URL == "" || a.seenImages[img.URL] {
			continue
		}
		if len(a.images) >= a.maxImages {
			continue
		}
		a.seenImages[img.URL] = true
		a.images = append(a.images, img)
	}
}

// PagesScraped returns the number of successfully merged pages.
func (a *Aggregator) PagesScraped() int { return a.pagesScraped }

// Report builds the terminal CrawlReport. It is always well-formed: empty
// slices, a summary, and Success=true regardless of how the crawl stopped.
func (a *Aggregator) Report(seedURL, domain, title, crawlID string, elapsed time.Duration) models.CrawlReport {
	if title == "" {
		title = "Website Content"
	}

	summary := fmt.Sprintf("Comprehensive scan of %s\n", domain)
	summary += fmt.Sprintf("Pages scraped: %d\n", a.pagesScraped)
	summary += fmt.Sprintf("Maximum depth reached: %d\n", a.maxDepthSeen)
	summary += fmt.Sprintf("Links found: %d (%d unique)\n", a.rawLinks, len(a.links))
	summary += fmt.Sprintf("Images found: %d (%d unique)\n", a.rawImages, len(a.images))
	summary += fmt.Sprintf("Runtime: %d seconds", int(elapsed.Seconds()))

	return models.CrawlReport{
		CrawlID:        crawlID,
		SeedURL:        seedURL,
		Title:          title,
		ContentSummary: summary,
		Links:          a.linksCopy(),
		Images:         a.imagesCopy(),
		PagesScraped:   a.pagesScraped,
		Success:        true,
	}
}

func (a *Aggregator) linksCopy() []models.LinkRef {
	out := make([]models.LinkRef, len(a.links))
	copy(out, a.links)
	return out
}

func (a *Aggregator) imagesCopy() []models.ImageRef {
	out := make([]models.ImageRef, len(a.images))
	copy(out, a.images)
	return out
}

// DedupLinks removes duplicate URLs from links, preserving first-seen order
// and truncating to cap (cap <= 0 means unlimited). Idempotent: applying it
// to already-deduplicated input returns an equal list.
func DedupLinks(links []models.LinkRef, cap int) []models.LinkRef {
	seen := make(map[string]bool, len(links))
	out := make([]models.LinkRef, 0, len(links))
	for _, link := range links {
		if link.URL == "" || seen[link.URL] {
			continue
		}
		if cap > 0 && len(out) >= cap {
			break
		}
		seen[link.URL] = true
		out = append(out, link)
	}
	return out
}

// DedupImages is DedupLinks for image references.
func DedupImages(images []models.ImageRef, cap int) []models.ImageRef {
	seen := make(map[string]bool, len(images))
	out := make([]models.ImageRef, 0, len(images))
	for _, img := range images {
		if img.URL == "" || seen[img.URL] {
			continue
		}
		if cap > 0 && len(out) >= cap {
			break
		}
		seen[img.URL] = true
		out = append(out, img)
	}
	return out
}

// ReportFromImages builds a well-formed CrawlReport around an externally
// supplied image list without running a crawl, for collaborators that ingest
// pre-built image references (e.g. uploads). The list is deduplicated under
// the same rules as crawled images.
func ReportFromImages(seedURL, title string, images []models.ImageRef) models.CrawlReport {
	if title == "" {
		title = "Uploaded Images"
	}
	unique := DedupImages(images, 0)
	return models.CrawlReport{
		SeedURL:        seedURL,
		Title:          title,
		ContentSummary: fmt.Sprintf("Image collection: %d images (%d unique)", len(images), len(unique)),
		Links:          []models.LinkRef{},
		Images:         unique,
		Success:        true,
	}
}
