package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecrawl/pkg/models"
)

func link(url string) models.LinkRef {
	return models.LinkRef{Text: "link", URL: url, SourcePage: "https://example.com"}
}

func image(url string) models.ImageRef {
	return models.ImageRef{URL: url, Title: "Image"}
}

func TestAggregator_FirstSeenDedup(t *testing.T) {
	agg := New(100, 100)

	agg.MergePage(models.PageResult{
		Success: true,
		Links: []models.LinkRef{
			{Text: "first text", URL: "https://example.com/a", SourcePage: "https://example.com"},
			link("https://example.com/b"),
		},
	}, 0)
	agg.MergePage(models.PageResult{
		Success: true,
		Links: []models.LinkRef{
			// Same URL, different text: the first occurrence wins
			{Text: "second text", URL: "https://example.com/a", SourcePage: "https://example.com/p2"},
			link("https://example.com/c"),
		},
	}, 1)

	report := agg.Report("https://example.com", "example.com", "", "id", time.Second)

	require.Len(t, report.Links, 3)
	assert.Equal(t, "https://example.com/a", report.Links[0].URL)
	assert.Equal(t, "first text", report.Links[0].Text)
	assert.Equal(t, "https://example.com/b", report.Links[1].URL)
	assert.Equal(t, "https://example.com/c", report.Links[2].URL)
}

func TestAggregator_Caps(t *testing.T) {
	agg := New(3, 2)

	var links []models.LinkRef
	var images []models.ImageRef
	for i := 0; i < 10; i++ {
		links = append(links, link(fmt.Sprintf("https://example.com/l%d", i)))
		images = append(images, image(fmt.Sprintf("https://example.com/i%d.png", i)))
	}
	agg.MergePage(models.PageResult{Success: true, Links: links, Images: images}, 0)

	report := agg.Report("https://example.com", "example.com", "", "id", time.Second)

	assert.Len(t, report.Links, 3)
	assert.Len(t, report.Images, 2)
	// The summary still reports raw counts
	assert.Contains(t, report.ContentSummary, "Links found: 10 (3 unique)")
	assert.Contains(t, report.ContentSummary, "Images found: 10 (2 unique)")
}

func TestAggregator_Report(t *testing.T) {
	agg := New(100, 100)
	agg.MergePage(models.PageResult{Success: true, Links: []models.LinkRef{link("https://example.com/a")}}, 0)
	agg.MergePage(models.PageResult{Success: true, Images: []models.ImageRef{image("https://example.com/i.png")}}, 2)

	report := agg.Report("https://example.com", "example.com", "Example Site", "crawl-1", 3*time.Second)

	assert.Equal(t, "crawl-1", report.CrawlID)
	assert.Equal(t, "https://example.com", report.SeedURL)
	assert.Equal(t, "Example Site", report.Title)
	assert.Equal(t, 2, report.PagesScraped)
	assert.True(t, report.Success)

	assert.Contains(t, report.ContentSummary, "Comprehensive scan of example.com")
	assert.Contains(t, report.ContentSummary, "Pages scraped: 2")
	assert.Contains(t, report.ContentSummary, "Maximum depth reached: 2")
	assert.Contains(t, report.ContentSummary, "Runtime: 3 seconds")
}

func TestAggregator_EmptyReportWellFormed(t *testing.T) {
	report := New(10, 10).Report("https://example.com", "example.com", "", "id", 0)

	assert.True(t, report.Success)
	assert.Equal(t, "Website Content", report.Title)
	assert.NotNil(t, report.Links)
	assert.NotNil(t, report.Images)
	assert.Empty(t, report.Links)
	assert.Empty(t, report.Images)
	assert.Equal(t, 0, report.PagesScraped)
}

func TestDedupLinks(t *testing.T) {
	links := []models.LinkRef{
		link("https://example.com/a"),
		link("https://example.com/b"),
		link("https://example.com/a"),
		{URL: ""},
		link("https://example.com/c"),
	}

	out := DedupLinks(links, 0)
	require.Len(t, out, 3)
	assert.Equal(t, "https://example.com/a", out[0].URL)
	assert.Equal(t, "https://example.com/b", out[1].URL)
	assert.Equal(t, "https://example.com/c", out[2].URL)

	// Idempotent
	assert.Equal(t, out, DedupLinks(out, 0))

	// Cap applies after dedup
	assert.Len(t, DedupLinks(links, 2), 2)
}

func TestDedupImages(t *testing.T) {
	images := []models.ImageRef{
		image("https://example.com/a.png"),
		image("https://example.com/a.png"),
		image("https://example.com/b.png"),
	}

	out := DedupImages(images, 0)
	require.Len(t, out, 2)
	assert.Equal(t, out, DedupImages(out, 0))
}

func TestReportFromImages(t *testing.T) {
	report := ReportFromImages("https://example.com/gallery", "", []models.ImageRef{
		image("https://example.com/a.png"),
		image("https://example.com/a.png"),
		image("https://example.com/b.png"),
	})

	assert.True(t, report.Success)
	assert.Equal(t, "Uploaded Images", report.Title)
	assert.Len(t, report.Images, 2)
	assert.Empty(t, report.Links)
	assert.Contains(t, report.ContentSummary, "3 images (2 unique)")
}
