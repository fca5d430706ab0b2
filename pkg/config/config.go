package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode names a bundle of budget defaults.
type Mode string

const (
	// ModeFast is a comprehensive scan tuned to finish well inside a
	// 30-second window: many pages, very short per-request timeouts.
	ModeFast Mode = "fast"
	// ModeThorough trades speed for coverage and patience with slow hosts.
	ModeThorough Mode = "thorough"
	// ModeSingle scrapes exactly the seed page, following nothing.
	ModeSingle Mode = "single"
)

// CrawlConfig holds all budgets and knobs for a single crawl invocation.
type CrawlConfig struct {
	Mode         Mode          `yaml:"mode,omitempty"`
	UserAgent    string        `yaml:"user_agent,omitempty"`
	MaxPages     int           `yaml:"max_pages,omitempty"`
	MaxDepth     int           `yaml:"max_depth,omitempty"`
	MaxRuntime   time.Duration `yaml:"max_runtime,omitempty"`
	FetchTimeout time.Duration `yaml:"fetch_timeout,omitempty"`
	Workers      int           `yaml:"workers,omitempty"` // <=1 selects the sequential scheduler

	// Aggregation caps
	MaxLinks  int `yaml:"max_links,omitempty"`
	MaxImages int `yaml:"max_images,omitempty"`

	// Frontier limits
	LinksPerPage int `yaml:"links_per_page,omitempty"` // Enqueue budget per page; recorded links are uncapped
	MaxPending   int `yaml:"max_pending,omitempty"`    // Frontier queue soft cap

	// Body size limits
	MaxPageSizeBytes int `yaml:"max_page_size_bytes,omitempty"`
	ReadableTextCap  int `yaml:"readable_text_cap,omitempty"` // Input cap for the readable-text extractor

	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // nil=default, true=force, false=disable
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
}

// DefaultUserAgent is a browser-like identification header; some sites
// reject requests without one.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ForMode returns the budget defaults for a named mode.
func ForMode(mode Mode) CrawlConfig {
	cfg := CrawlConfig{
		Mode:             mode,
		UserAgent:        DefaultUserAgent,
		LinksPerPage:     20,
		MaxPending:       100,
		MaxPageSizeBytes: 2 << 20,
		ReadableTextCap:  500_000,
	}
	switch mode {
	case ModeThorough:
		cfg.MaxPages = 50
		cfg.MaxDepth = 3
		cfg.MaxRuntime = 240 * time.Second
		cfg.FetchTimeout = 30 * time.Second
		cfg.Workers = 2
		cfg.MaxLinks = 10000
		cfg.MaxImages = 1000
	case ModeSingle:
		cfg.MaxPages = 1
		cfg.MaxDepth = 0
		cfg.MaxRuntime = 60 * time.Second
		cfg.FetchTimeout = 30 * time.Second
		cfg.Workers = 1
		cfg.MaxLinks = 1000
		cfg.MaxImages = 200
	default:
		// Unknown mode strings are preserved so Validate can reject them.
		if mode == "" {
			cfg.Mode = ModeFast
		}
		cfg.MaxPages = 30
		cfg.MaxDepth = 3
		cfg.MaxRuntime = 28 * time.Second
		cfg.FetchTimeout = 1500 * time.Millisecond
		cfg.Workers = 5
		cfg.MaxLinks = 5000
		cfg.MaxImages = 500
	}
	return cfg
}

// Load reads a YAML config file and overlays it on the defaults for mode.
// A mode named in the file takes precedence over the argument.
func Load(path string, mode Mode) (CrawlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CrawlConfig{}, fmt.Errorf("read config: %w", err)
	}

	var fileCfg CrawlConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return CrawlConfig{}, fmt.Errorf("parse config: %w", err)
	}

	if fileCfg.Mode != "" {
		mode = fileCfg.Mode
	}
	cfg := ForMode(mode)
	cfg.merge(fileCfg)
	return cfg, nil
}

// merge overlays non-zero fields from other onto c.
func (c *CrawlConfig) merge(other CrawlConfig) {
	if other.UserAgent != "" {
		c.UserAgent = other.UserAgent
	}
	if other.MaxPages > 0 {
		c.MaxPages = other.MaxPages
	}
	if other.MaxDepth > 0 {
		c.MaxDepth = other.MaxDepth
	}
	if other.MaxRuntime > 0 {
		c.MaxRuntime = other.MaxRuntime
	}
	if other.FetchTimeout > 0 {
		c.FetchTimeout = other.FetchTimeout
	}
	if other.Workers > 0 {
		c.Workers = other.Workers
	}
	if other.MaxLinks > 0 {
		c.MaxLinks = other.MaxLinks
	}
	if other.MaxImages > 0 {
		c.MaxImages = other.MaxImages
	}
	if other.LinksPerPage > 0 {
		c.LinksPerPage = other.LinksPerPage
	}
	if other.MaxPending > 0 {
		c.MaxPending = other.MaxPending
	}
	if other.MaxPageSizeBytes > 0 {
		c.MaxPageSizeBytes = other.MaxPageSizeBytes
	}
	if other.ReadableTextCap > 0 {
		c.ReadableTextCap = other.ReadableTextCap
	}
	c.HTTPClientSettings = other.HTTPClientSettings
}
