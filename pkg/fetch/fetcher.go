package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"sitecrawl/pkg/utils"
)

// Result is the outcome of one successful fetch.
type Result struct {
	Body       []byte
	FinalURL   *url.URL // URL after any redirects
	StatusCode int
}

// Fetcher performs single-attempt HTTP GETs. Retrying is a scheduler policy,
// and the scheduler's policy is no retries: a failed fetch is final for that
// URL within the run.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int
	log         *logrus.Entry
}

// NewFetcher creates a new Fetcher instance.
func NewFetcher(client *http.Client, userAgent string, maxBodySize int, log *logrus.Entry) *Fetcher {
	return &Fetcher{
		client:      client,
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
		log:         log,
	}
}

// Fetch issues one GET for rawURL with the given per-request timeout.
// Non-2xx statuses are errors (ErrHTTPStatus); connection and timeout
// failures are ErrNetwork. The body is read fully, capped at maxBodySize.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*Result, error) {
	reqLog := f.log.WithField("url", rawURL)

	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request for '%s': %w", utils.ErrNetwork, rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			// Crawl-level cancellation, not a page-level network failure
			return nil, ctx.Err()
		}
		reqLog.Debugf("Network error: %v", err)
		return nil, fmt.Errorf("%w: %w", utils.ErrNetwork, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqLog.WithField("status_code", resp.StatusCode).Debug("Non-2xx response")
		return nil, fmt.Errorf("%w: status %d %s", utils.ErrHTTPStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	// Read with a hard size cap to bound memory on pathological pages.
	limited := io.LimitReader(resp.Body, int64(f.maxBodySize)+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body from '%s': %w", utils.ErrNetwork, rawURL, err)
	}
	if len(body) > f.maxBodySize {
		reqLog.Warnf("Body exceeds %d bytes, truncating", f.maxBodySize)
		body = body[:f.maxBodySize]
	}

	finalURL := resp.Request.URL
	if finalURL.String() != rawURL {
		reqLog.WithField("final_url", finalURL.String()).Debug("URL redirected")
	}

	return &Result{Body: body, FinalURL: finalURL, StatusCode: resp.StatusCode}, nil
}
