package utils

import (
	"context"
	"errors"
	"net"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrInvalidURL = errors.New("invalid seed URL")                 // Malformed seed, fatal for the whole crawl
	ErrNetwork    = errors.New("network error")                    // Connection/timeout, page skipped
	ErrHTTPStatus = errors.New("unexpected HTTP status (non-2xx)") // Wraps status line, page skipped
	ErrParse      = errors.New("parsing error")                    // Malformed markup/URL, element or page skipped
	ErrInternal   = errors.New("internal crawler error")           // Unexpected fault during orchestration
)

// CategorizeError maps an error to a predefined category string for logging/metrics.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	// Check against sentinel errors first
	switch {
	case errors.Is(err, ErrInvalidURL):
		return "InvalidURL"
	case errors.Is(err, ErrHTTPStatus):
		errMsg := err.Error()
		if strings.Contains(errMsg, " 404") {
			return "HTTP_404"
		}
		if strings.Contains(errMsg, " 403") {
			return "HTTP_403"
		}
		if strings.Contains(errMsg, " 429") {
			return "HTTP_429"
		}
		if strings.Contains(errMsg, "status 5") {
			return "HTTP_5xx"
		}
		return "HTTP_Other"
	case errors.Is(err, ErrNetwork):
		lowerMsg := strings.ToLower(err.Error())
		if strings.Contains(lowerMsg, "timeout") || strings.Contains(lowerMsg, "deadline exceeded") {
			return "Network_Timeout"
		}
		if strings.Contains(lowerMsg, "connection refused") {
			return "Network_ConnectionRefused"
		}
		if strings.Contains(lowerMsg, "no such host") {
			return "Network_DNSLookup"
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "Network_Timeout"
		}
		return "Network_Other"
	case errors.Is(err, ErrParse):
		errMsg := err.Error()
		if strings.Contains(errMsg, "URL") {
			return "Parse_URL"
		}
		if strings.Contains(errMsg, "HTML") {
			return "Parse_HTML"
		}
		return "Parse_Other"
	case errors.Is(err, ErrInternal):
		return "Internal"
	}

	// --- Fallback checks for common underlying error types/strings ---

	// Context errors
	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}

	// Network errors (if not wrapped by custom sentinels)
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "Network_Timeout"
		}
	}
	lowerErrMsg := strings.ToLower(err.Error())
	if strings.Contains(lowerErrMsg, "timeout") {
		return "Network_TimeoutGeneric"
	}
	if strings.Contains(lowerErrMsg, "connection refused") {
		return "Network_ConnectionRefused"
	}
	if strings.Contains(lowerErrMsg, "no such host") {
		return "Network_DNSLookup"
	}
	if strings.Contains(lowerErrMsg, "tls") || strings.Contains(lowerErrMsg, "certificate") {
		return "Network_TLS"
	}
	if strings.Contains(lowerErrMsg, "reset by peer") {
		return "Network_ConnectionReset"
	}

	return "Unknown"
}
