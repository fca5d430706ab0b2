package frontier

import (
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"sitecrawl/pkg/models"
	"sitecrawl/pkg/parse"
)

// excludedExtensions are URL suffixes that name documents, archives, and
// media rather than navigable pages.
var excludedExtensions = []string{
	".pdf", ".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx",
	".zip", ".tar", ".gz", ".rar",
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp",
	".mp3", ".mp4", ".avi",
}

// excludedPathSegments are auth-flow paths that never lead to content.
var excludedPathSegments = []string{"/login", "/logout", "/register", "/admin"}

// excludedSchemes are non-navigable link schemes.
var excludedSchemes = []string{"mailto:", "tel:", "javascript:"}

// Frontier is the set of discovered-but-not-yet-fetched URLs for one crawl,
// a strict FIFO so traversal is breadth-first. One mutex guards both the
// visited set and the queue: a URL is recorded as visited before it is
// queued, so concurrently discovered duplicates are rejected
// deterministically.
type Frontier struct {
	mu         sync.Mutex
	visited    map[string]bool
	queue      []models.CrawlTarget
	seedHost   string
	maxDepth   int
	maxPending int
	dropped    int
	log        *logrus.Entry
}

// New creates a Frontier scoped to the seed's host. maxPending is a soft cap
// on queued targets; offers beyond it are dropped silently.
func New(seed *url.URL, maxDepth, maxPending int, log *logrus.Entry) *Frontier {
	return &Frontier{
		visited:    make(map[string]bool),
		seedHost:   seed.Hostname(),
		maxDepth:   maxDepth,
		maxPending: maxPending,
		log:        log,
	}
}

// Seed enqueues the crawl's starting URL at depth zero. Unlike Offer it
// bypasses the exclusion rules, which exist to filter discovered links; a
// seed the operator asked for is always attempted.
func (f *Frontier) Seed(u *url.URL) {
	normalized := parse.NormalizeURL(u)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited[normalized] {
		return
	}
	f.visited[normalized] = true
	f.queue = append(f.queue, models.CrawlTarget{URL: normalized, Depth: 0})
}

// Offer proposes a URL for crawling at the given depth. It is accepted only
// if it has not been seen, is within depth budget, is on the seed's host
// (exact host-string match; subdomains do not match), and matches no
// exclusion rule. Returns true when the target was queued.
func (f *Frontier) Offer(rawURL string, depth int) bool {
	if depth > f.maxDepth {
		return false
	}
	if Excluded(rawURL) {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		f.log.Debugf("Rejecting unparseable URL '%s': %v", rawURL, err)
		return false
	}
	if !strings.EqualFold(parsed.Hostname(), f.seedHost) {
		return false
	}
	// Normalization keeps slash/fragment variants of one page from being
	// crawled as separate targets.
	normalized := parse.NormalizeURL(parsed)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited[normalized] {
		return false
	}
	if len(f.queue) >= f.maxPending {
		f.dropped++
		f.log.Debugf("Frontier full (%d pending), dropping '%s'", f.maxPending, rawURL)
		return false
	}

	// Mark visited before queueing so a concurrent duplicate offer loses.
	f.visited[normalized] = true
	f.queue = append(f.queue, models.CrawlTarget{URL: normalized, Depth: depth})
	return true
}

// Poll pops the oldest target. Returns false when the queue is exhausted.
func (f *Frontier) Poll() (models.CrawlTarget, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return models.CrawlTarget{}, false
	}
	target := f.queue[0]
	f.queue = f.queue[1:]
	return target, true
}

// Len returns the number of pending targets.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// VisitedCount returns the number of distinct URLs ever accepted.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// Dropped returns how many offers were discarded because the queue was full.
func (f *Frontier) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// Excluded reports whether rawURL matches any static exclusion rule:
// non-content file extensions, auth-flow paths, non-navigable schemes, or a
// bare fragment.
func Excluded(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	if lower == "" || strings.HasPrefix(lower, "#") {
		return true
	}
	for _, scheme := range excludedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}

	// Strip query/fragment before testing the path suffix.
	pathOnly := lower
	if idx := strings.IndexAny(pathOnly, "?#"); idx >= 0 {
		pathOnly = pathOnly[:idx]
	}
	for _, ext := range excludedExtensions {
		if strings.HasSuffix(pathOnly, ext) {
			return true
		}
	}
	for _, segment := range excludedPathSegments {
		if strings.Contains(pathOnly, segment) {
			return true
		}
	}
	return false
}
