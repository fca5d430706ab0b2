package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForMode_Fast(t *testing.T) {
	cfg := ForMode(ModeFast)

	assert.Equal(t, ModeFast, cfg.Mode)
	assert.Equal(t, 30, cfg.MaxPages)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, 28*time.Second, cfg.MaxRuntime)
	assert.Equal(t, 1500*time.Millisecond, cfg.FetchTimeout)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, 5000, cfg.MaxLinks)
	assert.Equal(t, 500, cfg.MaxImages)
	assert.Equal(t, 20, cfg.LinksPerPage)
	assert.Equal(t, 100, cfg.MaxPending)
}

func TestForMode_Thorough(t *testing.T) {
	cfg := ForMode(ModeThorough)

	assert.Equal(t, 50, cfg.MaxPages)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, 240*time.Second, cfg.MaxRuntime)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 10000, cfg.MaxLinks)
	assert.Equal(t, 1000, cfg.MaxImages)
}

func TestForMode_Single(t *testing.T) {
	cfg := ForMode(ModeSingle)

	assert.Equal(t, 1, cfg.MaxPages)
	assert.Equal(t, 0, cfg.MaxDepth)
	assert.Equal(t, 1, cfg.Workers)
}

func TestForMode_EmptyDefaultsToFast(t *testing.T) {
	cfg := ForMode("")

	assert.Equal(t, ModeFast, cfg.Mode)
	assert.Equal(t, 30, cfg.MaxPages)
}

func TestForMode_UnknownModePreserved(t *testing.T) {
	cfg := ForMode("bogus")

	// The string is kept so Validate can reject it
	assert.Equal(t, Mode("bogus"), cfg.Mode)
}

func TestLoad_OverlaysFileOnModeDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
mode: fast
max_pages: 10
fetch_timeout: 3s
user_agent: "test-agent/1.0"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, ModeFast)
	require.NoError(t, err)

	// Overridden fields
	assert.Equal(t, 10, cfg.MaxPages)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "test-agent/1.0", cfg.UserAgent)

	// Untouched fields keep mode defaults
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, 28*time.Second, cfg.MaxRuntime)
	assert.Equal(t, 5, cfg.Workers)
}

func TestLoad_FileModeOverridesArgument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: thorough\n"), 0o644))

	cfg, err := Load(path, ModeFast)
	require.NoError(t, err)

	assert.Equal(t, ModeThorough, cfg.Mode)
	assert.Equal(t, 50, cfg.MaxPages)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), ModeFast)
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: [unclosed\n"), 0o644))

	_, err := Load(path, ModeFast)
	assert.Error(t, err)
}
