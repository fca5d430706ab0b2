package crawler

import (
	"context"
	"fmt"
	"net/url"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"sitecrawl/pkg/aggregate"
	"sitecrawl/pkg/config"
	"sitecrawl/pkg/fetch"
	"sitecrawl/pkg/frontier"
	"sitecrawl/pkg/models"
	"sitecrawl/pkg/parse"
	"sitecrawl/pkg/utils"
)

// CrawlSession owns all mutable state for one crawl invocation: frontier,
// aggregator, fetcher, deadline. A fresh session is constructed per call and
// discarded at completion; nothing is ambient or shared across runs.
type CrawlSession struct {
	cfg      config.CrawlConfig
	crawlID  string
	seed     *url.URL
	fetcher  *fetch.Fetcher
	parser   *parse.PageParser
	frontier *frontier.Frontier
	agg      *aggregate.Aggregator
	sem      *semaphore.Weighted
	log      *logrus.Entry

	deadline time.Time
	title    string // Title of the first successfully fetched page
}

// Crawl fetches seedURL and follows same-host links breadth-first under the
// budgets in cfg, returning a deduplicated aggregate report.
//
// The report is always complete and well-formed. Stopping on the page cap or
// the deadline is normal termination (Success=true with whatever was
// accumulated); only seed validation failure or an unexpected internal fault
// yields Success=false.
func Crawl(ctx context.Context, seedURL string, cfg config.CrawlConfig, baseLog *logrus.Logger) (report models.CrawlReport) {
	crawlID := uuid.NewString()
	log := baseLog.WithFields(logrus.Fields{"crawl_id": crawlID, "mode": cfg.Mode})

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		return failedReport(seedURL, crawlID, err)
	}

	// Any panic during orchestration becomes a failed-but-well-formed
	// report; an unhandled fault must never reach the caller.
	defer func() {
		if r := recover(); r != nil {
			log.WithField("stack_trace", string(debug.Stack())).Errorf("PANIC recovered in crawl: %v", r)
			report = failedReport(seedURL, crawlID, fmt.Errorf("%w: panic: %v", utils.ErrInternal, r))
		}
	}()

	seed, err := parse.ValidateSeedURL(seedURL)
	if err != nil {
		log.Warnf("Seed validation failed: %v", err)
		return failedReport(seedURL, crawlID, err)
	}

	session := newSession(seed, cfg, crawlID, log)
	return session.run(ctx)
}

// newSession constructs the per-run components.
func newSession(seed *url.URL, cfg config.CrawlConfig, crawlID string, log *logrus.Entry) *CrawlSession {
	client := fetch.NewClient(cfg.HTTPClientSettings, log.Logger)
	return &CrawlSession{
		cfg:      cfg,
		crawlID:  crawlID,
		seed:     seed,
		fetcher:  fetch.NewFetcher(client, cfg.UserAgent, cfg.MaxPageSizeBytes, log),
		parser:   parse.NewPageParser(log),
		frontier: frontier.New(seed, cfg.MaxDepth, cfg.MaxPending, log),
		agg:      aggregate.New(cfg.MaxLinks, cfg.MaxImages),
		sem:      semaphore.NewWeighted(int64(cfg.Workers)),
		log:      log,
	}
}

// run drives the frontier until it is exhausted, the page cap is reached, or
// the wall-clock deadline passes.
func (s *CrawlSession) run(ctx context.Context) models.CrawlReport {
	start := time.Now()
	s.deadline = start.Add(s.cfg.MaxRuntime)

	crawlCtx, cancel := context.WithDeadline(ctx, s.deadline)
	defer cancel()

	s.log.WithFields(logrus.Fields{
		"domain":      s.seed.Hostname(),
		"max_pages":   s.cfg.MaxPages,
		"max_depth":   s.cfg.MaxDepth,
		"max_runtime": s.cfg.MaxRuntime,
		"workers":     s.cfg.Workers,
	}).Info("Crawl starting")

	s.frontier.Seed(s.seed)

	if s.cfg.Workers <= 1 {
		s.runSequential(crawlCtx)
	} else {
		s.runParallel(crawlCtx)
	}

	elapsed := time.Since(start)
	report := s.agg.Report(s.seed.String(), s.seed.Hostname(), s.title, s.crawlID, elapsed)
	s.log.WithFields(logrus.Fields{
		"pages_scraped": report.PagesScraped,
		"unique_links":  len(report.Links),
		"unique_images": len(report.Images),
		"duration":      elapsed.String(),
	}).Info("Crawl finished")
	return report
}

// runSequential processes one target at a time. No locking is needed: a
// single goroutine owns all session state.
func (s *CrawlSession) runSequential(ctx context.Context) {
	for s.withinBudget(ctx) {
		target, ok := s.frontier.Poll()
		if !ok {
			return
		}
		result := s.fetchAndParse(ctx, target)
		s.merge(target, result)
	}
}

// runParallel dispatches batches of targets across goroutines with at most
// cfg.Workers fetches in flight. Results are collected per batch and merged
// sequentially in batch order, and link discovery happens only after the
// whole batch is merged, so intra-batch depth ordering is preserved.
func (s *CrawlSession) runParallel(ctx context.Context) {
	window := s.cfg.Workers * 2

	for s.withinBudget(ctx) {
		// Never dispatch more targets than the page budget has room for.
		limit := window
		if remaining := s.cfg.MaxPages - s.agg.PagesScraped(); remaining < limit {
			limit = remaining
		}

		batch := make([]models.CrawlTarget, 0, limit)
		for len(batch) < limit {
			target, ok := s.frontier.Poll()
			if !ok {
				break
			}
			batch = append(batch, target)
		}
		if len(batch) == 0 {
			return
		}

		// Workers write disjoint slots; the merge below is single-goroutine.
		results := make([]models.PageResult, len(batch))
		var wg sync.WaitGroup
		for i, target := range batch {
			if err := s.sem.Acquire(ctx, 1); err != nil {
				// Deadline hit mid-batch; targets not yet launched are abandoned.
				s.log.Debugf("Stopping batch dispatch: %v", err)
				break
			}
			wg.Add(1)
			go func(i int, target models.CrawlTarget) {
				defer wg.Done()
				defer s.sem.Release(1)
				results[i] = s.fetchAndParse(ctx, target)
			}(i, target)
		}
		wg.Wait()

		// In-flight requests at the deadline were allowed to finish (their
		// timeouts are clamped to the remaining budget); merge their results.
		for i := range results {
			if results[i].SourceURL == "" {
				continue // slot never launched
			}
			s.merge(batch[i], results[i])
		}
	}
}

// withinBudget is the loop invariant, checked before each unit of work.
func (s *CrawlSession) withinBudget(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if !time.Now().Before(s.deadline) {
		s.log.Infof("Time limit reached after %d pages", s.agg.PagesScraped())
		return false
	}
	if s.agg.PagesScraped() >= s.cfg.MaxPages {
		s.log.Infof("Page cap (%d) reached", s.cfg.MaxPages)
		return false
	}
	return true
}

// requestTimeout clamps the per-request timeout to the remaining wall-clock
// budget so no fetch outlives the crawl deadline by more than scheduling slop.
func (s *CrawlSession) requestTimeout() time.Duration {
	remaining := time.Until(s.deadline)
	if remaining <= 0 {
		return time.Millisecond
	}
	if remaining < s.cfg.FetchTimeout {
		return remaining
	}
	return s.cfg.FetchTimeout
}

// fetchAndParse performs the fetch+parse pipeline for one target. Failures
// are absorbed into the PageResult; they never propagate.
func (s *CrawlSession) fetchAndParse(ctx context.Context, target models.CrawlTarget) models.PageResult {
	taskLog := s.log.WithFields(logrus.Fields{"url": target.URL, "depth": target.Depth})

	res, err := s.fetcher.Fetch(ctx, target.URL, s.requestTimeout())
	if err != nil {
		taskLog.WithField("category", utils.CategorizeError(err)).Infof("Fetch failed, skipping page: %v", err)
		return models.PageResult{SourceURL: target.URL, FailureReason: err.Error()}
	}

	result := s.parser.ParsePage(res.Body, res.FinalURL)
	if result.Success {
		result.TextContent = parse.ExtractReadableText(res.Body, res.FinalURL, s.cfg.ReadableTextCap, taskLog)
	}
	if result.SkippedElements > 0 {
		taskLog.Debugf("Skipped %d malformed elements", result.SkippedElements)
	}
	return result
}

// merge folds one result into the aggregate and offers discovered links back
// to the frontier. Runs only on the scheduler goroutine.
func (s *CrawlSession) merge(target models.CrawlTarget, result models.PageResult) {
	if !result.Success {
		return // logged at fetch/parse time; failures don't count or stop the crawl
	}

	if s.agg.PagesScraped() == 0 && result.Title != "" {
		s.title = result.Title
	}
	s.agg.MergePage(result, target.Depth)
	s.log.Infof("Scraped page %d of %d: %.80s", s.agg.PagesScraped(), s.cfg.MaxPages, target.URL)

	if target.Depth >= s.cfg.MaxDepth {
		return
	}
	// Only the first LinksPerPage links are considered for the frontier;
	// the recorded link list itself is not limited by this budget.
	candidates := result.Links
	if len(candidates) > s.cfg.LinksPerPage {
		candidates = candidates[:s.cfg.LinksPerPage]
	}
	for _, link := range candidates {
		s.frontier.Offer(link.URL, target.Depth+1)
	}
}

// ScrapePage fetches and parses exactly one page, with no link following.
// Unlike a crawl, a failed fetch here is a failed report: there is no
// partial result to fall back on.
func ScrapePage(ctx context.Context, pageURL string, cfg config.CrawlConfig, baseLog *logrus.Logger) models.CrawlReport {
	crawlID := uuid.NewString()
	log := baseLog.WithFields(logrus.Fields{"crawl_id": crawlID, "mode": config.ModeSingle})

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		return failedReport(pageURL, crawlID, err)
	}

	_, err = parse.ValidateSeedURL(pageURL)
	if err != nil {
		log.Warnf("URL validation failed: %v", err)
		return failedReport(pageURL, crawlID, err)
	}

	client := fetch.NewClient(cfg.HTTPClientSettings, log.Logger)
	fetcher := fetch.NewFetcher(client, cfg.UserAgent, cfg.MaxPageSizeBytes, log)

	res, err := fetcher.Fetch(ctx, pageURL, cfg.FetchTimeout)
	if err != nil {
		log.WithField("category", utils.CategorizeError(err)).Warnf("Fetch failed: %v", err)
		return failedReport(pageURL, crawlID, fmt.Errorf("failed to fetch the website: %w", err))
	}

	result := parse.NewPageParser(log).ParsePage(res.Body, res.FinalURL)
	if !result.Success {
		return failedReport(pageURL, crawlID, fmt.Errorf("%w: could not parse page HTML", utils.ErrParse))
	}

	title := result.Title
	if title == "" {
		title = "No Title Found"
	}

	return models.CrawlReport{
		CrawlID:        crawlID,
		SeedURL:        pageURL,
		Title:          title,
		ContentSummary: parse.ExtractReadableText(res.Body, res.FinalURL, cfg.ReadableTextCap, log),
		Links:          aggregate.DedupLinks(result.Links, cfg.MaxLinks),
		Images:         aggregate.DedupImages(result.Images, cfg.MaxImages),
		PagesScraped:   1,
		Success:        true,
	}
}

// failedReport builds the well-formed failure shape: empty collections, the
// seed echoed back, and the error message preserved.
func failedReport(seedURL, crawlID string, err error) models.CrawlReport {
	return models.CrawlReport{
		CrawlID: crawlID,
		SeedURL: seedURL,
		Links:   []models.LinkRef{},
		Images:  []models.ImageRef{},
		Success: false,
		Error:   err.Error(),
	}
}
