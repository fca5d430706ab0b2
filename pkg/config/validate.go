package config

import (
	"fmt"
	"time"
)

// Validate checks CrawlConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *CrawlConfig) Validate() (warnings []string, err error) {
	switch c.Mode {
	case ModeFast, ModeThorough, ModeSingle:
	case "":
		c.Mode = ModeFast
	default:
		return nil, fmt.Errorf("unknown mode '%s' (want fast, thorough, or single)", c.Mode)
	}

	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	// MaxPages
	if c.MaxPages <= 0 {
		warnings = append(warnings, "max_pages should be > 0, defaulting to 30")
		c.MaxPages = 30
	}

	// MaxDepth (0 is valid: seed page only)
	if c.MaxDepth < 0 {
		warnings = append(warnings, "max_depth cannot be negative, setting to 0")
		c.MaxDepth = 0
	}

	// MaxRuntime
	if c.MaxRuntime <= 0 {
		warnings = append(warnings, "max_runtime should be > 0, defaulting to 28s")
		c.MaxRuntime = 28 * time.Second
	}

	// FetchTimeout
	if c.FetchTimeout <= 0 {
		warnings = append(warnings, "fetch_timeout should be > 0, defaulting to 1.5s")
		c.FetchTimeout = 1500 * time.Millisecond
	}

	// Workers
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Workers > 10 {
		warnings = append(warnings, fmt.Sprintf("workers capped at 10 (was %d)", c.Workers))
		c.Workers = 10
	}

	// Aggregation caps
	if c.MaxLinks <= 0 {
		c.MaxLinks = 5000
	}
	if c.MaxImages <= 0 {
		c.MaxImages = 500
	}

	// Frontier limits
	if c.LinksPerPage <= 0 {
		c.LinksPerPage = 20
	}
	if c.MaxPending <= 0 {
		c.MaxPending = 100
	}

	// Body size limits
	if c.MaxPageSizeBytes <= 0 {
		c.MaxPageSizeBytes = 2 << 20
	}
	if c.ReadableTextCap <= 0 {
		c.ReadableTextCap = 500_000
	}

	c.validateHTTPClientSettings()

	return warnings, nil
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *CrawlConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 10
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}
