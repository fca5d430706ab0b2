package parse

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"sitecrawl/pkg/utils"
)

// ValidateSeedURL checks that raw is a syntactically sound crawl seed:
// an http(s) scheme and a host must both be present.
func ValidateSeedURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing '%s': %w", utils.ErrInvalidURL, raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: '%s' has scheme '%s' (want http or https)", utils.ErrInvalidURL, raw, parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("%w: '%s' has no host", utils.ErrInvalidURL, raw)
	}
	return parsed, nil
}

// NormalizeURL standardizes a URL for visited-set comparison: lowercased
// scheme and host, default ports removed, empty path rewritten to "/",
// trailing slash stripped from non-root paths, fragment dropped. The query
// string is kept since distinct queries usually name distinct pages.
// Does not modify the input.
func NormalizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	normalized := *u

	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)

	if host, port, err := net.SplitHostPort(normalized.Host); err == nil {
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host
		}
	}

	if normalized.Path == "" {
		normalized.Path = "/"
	} else if len(normalized.Path) > 1 && strings.HasSuffix(normalized.Path, "/") {
		normalized.Path = normalized.Path[:len(normalized.Path)-1]
	}

	normalized.Fragment = ""
	return normalized.String()
}
