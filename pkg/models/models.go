package models

// CrawlTarget is a discovered URL and its breadth-first depth, waiting in the
// frontier. Immutable once created; consumed exactly once by the scheduler.
type CrawlTarget struct {
	URL   string
	Depth int
}

// LinkRef is one outbound link found on a page.
type LinkRef struct {
	Text       string `json:"text"`        // Anchor text, or a fallback derived from the URL
	URL        string `json:"url"`         // Absolute, resolved against the page's own URL
	SourcePage string `json:"source_page"` // Page the link was found on
}

// ImageRef is one image reference found on a page.
type ImageRef struct {
	URL   string `json:"url"`                // Absolute, resolved against the page's own URL
	Title string `json:"title"`              // alt text, then title attribute, then "Image"
	Alt   string `json:"alt_text,omitempty"` // Raw alt attribute, empty when absent
}

// PageResult is the outcome of fetching and parsing a single URL.
// Owned by the worker that produced it until merged into the aggregator.
type PageResult struct {
	SourceURL       string
	Title           string
	TextContent     string
	Links           []LinkRef
	Images          []ImageRef
	SkippedElements int // Per-element extraction failures absorbed during parsing
	Success         bool
	FailureReason   string
}

// CrawlReport is the terminal aggregate of one crawl invocation. It is always
// fully populated, even on early termination or failure.
type CrawlReport struct {
	CrawlID        string     `json:"crawl_id"`
	SeedURL        string     `json:"url"`
	Title          string     `json:"title"`
	ContentSummary string     `json:"content"`
	Links          []LinkRef  `json:"links"`  // Deduplicated by URL, first-seen order
	Images         []ImageRef `json:"images"` // Deduplicated by URL, first-seen order
	PagesScraped   int        `json:"pages_scraped"`
	Success        bool       `json:"success"`
	Error          string     `json:"error,omitempty"`
}
