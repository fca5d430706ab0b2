package parse

import (
	"bytes"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/sirupsen/logrus"
)

// ExtractReadableText produces a cleaned main-content string from raw HTML
// using Mozilla's Readability algorithm. Best effort: any failure yields ""
// rather than an error, and input is capped at maxInputBytes before
// processing to bound memory and CPU on pathological pages.
func ExtractReadableText(body []byte, pageURL *url.URL, maxInputBytes int, log *logrus.Entry) string {
	if len(body) == 0 {
		return ""
	}
	if maxInputBytes > 0 && len(body) > maxInputBytes {
		log.Debugf("Readable-text input capped at %d bytes (page was %d)", maxInputBytes, len(body))
		body = body[:maxInputBytes]
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		log.Debugf("Readability extraction failed for %s: %v", pageURL.String(), err)
		return ""
	}

	return strings.TrimSpace(article.TextContent)
}
