package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestCrawlConfig_Validate_Defaults(t *testing.T) {
	cfg := CrawlConfig{} // Zero value
	warnings, err := cfg.Validate()

	require.NoError(t, err)

	assert.Equal(t, ModeFast, cfg.Mode)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, 30, cfg.MaxPages)
	assert.Equal(t, 0, cfg.MaxDepth)
	assert.Equal(t, 28*time.Second, cfg.MaxRuntime)
	assert.Equal(t, 1500*time.Millisecond, cfg.FetchTimeout)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 5000, cfg.MaxLinks)
	assert.Equal(t, 500, cfg.MaxImages)
	assert.Equal(t, 20, cfg.LinksPerPage)
	assert.Equal(t, 100, cfg.MaxPending)
	assert.Equal(t, 2<<20, cfg.MaxPageSizeBytes)
	assert.Equal(t, 500_000, cfg.ReadableTextCap)

	// Check HTTP client defaults
	assert.Equal(t, 100, cfg.HTTPClientSettings.MaxIdleConns)
	assert.Equal(t, 10, cfg.HTTPClientSettings.MaxIdleConnsPerHost)
	assert.Equal(t, 90*time.Second, cfg.HTTPClientSettings.IdleConnTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTPClientSettings.TLSHandshakeTimeout)
	assert.Equal(t, 1*time.Second, cfg.HTTPClientSettings.ExpectContinueTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTPClientSettings.DialerTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTPClientSettings.DialerKeepAlive)

	assert.True(t, containsWarning(warnings, "max_pages should be > 0"))
	assert.True(t, containsWarning(warnings, "max_runtime should be > 0"))
	assert.True(t, containsWarning(warnings, "fetch_timeout should be > 0"))
}

func TestCrawlConfig_Validate_UnknownModeFatal(t *testing.T) {
	cfg := CrawlConfig{Mode: "turbo"}
	_, err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestCrawlConfig_Validate_NegativeDepthClamped(t *testing.T) {
	cfg := ForMode(ModeFast)
	cfg.MaxDepth = -2

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxDepth)
	assert.True(t, containsWarning(warnings, "max_depth cannot be negative"))
}

func TestCrawlConfig_Validate_WorkerCap(t *testing.T) {
	cfg := ForMode(ModeFast)
	cfg.Workers = 64

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Workers)
	assert.True(t, containsWarning(warnings, "workers capped at 10"))
}

func TestCrawlConfig_Validate_ModeDefaultsPassClean(t *testing.T) {
	for _, mode := range []Mode{ModeFast, ModeThorough, ModeSingle} {
		cfg := ForMode(mode)
		warnings, err := cfg.Validate()

		require.NoError(t, err, "mode %s", mode)
		assert.Empty(t, warnings, "mode %s", mode)
	}
}
