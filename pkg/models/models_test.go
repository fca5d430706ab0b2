package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawlReport_JSONShape(t *testing.T) {
	report := CrawlReport{
		CrawlID: "abc-123",
		SeedURL: "https://example.com",
		Title:   "Example",
		ContentSummary: "Comprehensive scan of example.com",
		Links: []LinkRef{
			{Text: "About", URL: "https://example.com/about", SourcePage: "https://example.com"},
		},
		Images: []ImageRef{
			{URL: "https://example.com/logo.png", Title: "Logo"},
		},
		PagesScraped: 3,
		Success:      true,
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "abc-123", decoded["crawl_id"])
	assert.Equal(t, "https://example.com", decoded["url"])
	assert.Equal(t, "Example", decoded["title"])
	assert.Equal(t, "Comprehensive scan of example.com", decoded["content"])
	assert.Equal(t, float64(3), decoded["pages_scraped"])
	assert.Equal(t, true, decoded["success"])

	// error is omitted on success
	_, hasError := decoded["error"]
	assert.False(t, hasError)

	links, ok := decoded["links"].([]any)
	require.True(t, ok)
	require.Len(t, links, 1)
	link := links[0].(map[string]any)
	assert.Equal(t, "About", link["text"])
	assert.Equal(t, "https://example.com/about", link["url"])
	assert.Equal(t, "https://example.com", link["source_page"])

	images, ok := decoded["images"].([]any)
	require.True(t, ok)
	require.Len(t, images, 1)
	img := images[0].(map[string]any)
	assert.Equal(t, "https://example.com/logo.png", img["url"])
	assert.Equal(t, "Logo", img["title"])
}

func TestCrawlReport_FailureIncludesError(t *testing.T) {
	report := CrawlReport{
		SeedURL: "notaurl",
		Links:   []LinkRef{},
		Images:  []ImageRef{},
		Success: false,
		Error:   "invalid seed URL",
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "invalid seed URL", decoded["error"])

	// Collections serialize as empty arrays, never null
	assert.Equal(t, []any{}, decoded["links"])
	assert.Equal(t, []any{}, decoded["images"])
}
