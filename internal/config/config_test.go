package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, 8, cfg.Search.MaxResults)
	assert.True(t, cfg.Search.FuzzySearch)
	assert.Equal(t, 150, cfg.Search.SearchDelayMs)
	assert.Equal(t, "info", cfg.Daemon.LogLevel)
	assert.Equal(t, []string{"alt"}, cfg.Hotkey.Modifiers)
	assert.Equal(t, "space", cfg.Hotkey.Key)
}

func TestLoadFromFileMissingReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Search.MaxResults = 12
	cfg.Search.Folders = []string{"/home/u/Documents"}
	cfg.Web.Shortcuts = []WebShortcut{{Prefix: "ddg", Name: "DuckDuckGo", URL: "https://duckduckgo.com/?q="}}
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [not a map"), 0o600))

	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func TestGetSet(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	require.NoError(t, cfg.Set("search.max_results", "10"))
	got, err := cfg.Get("search.max_results")
	require.NoError(t, err)
	assert.Equal(t, "10", got)

	require.NoError(t, cfg.Set("search.fuzzy_search", "false"))
	assert.False(t, cfg.Search.FuzzySearch)

	require.NoError(t, cfg.Set("daemon.log_level", "debug"))
	assert.Equal(t, "debug", cfg.Daemon.LogLevel)

	require.NoError(t, cfg.Set("search.folders", "/a, /b"))
	assert.Equal(t, []string{"/a", "/b"}, cfg.Search.Folders)

	require.NoError(t, cfg.Set("hotkey.modifiers", "Ctrl+Shift"))
	assert.Equal(t, []string{"ctrl", "shift"}, cfg.Hotkey.Modifiers)
}

func TestSetRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Error(t, cfg.Set("search.max_results", "-1"))
	assert.Error(t, cfg.Set("search.max_results", "lots"))
	assert.Error(t, cfg.Set("daemon.log_level", "loud"))
	assert.Error(t, cfg.Set("search.unknown", "x"))
	assert.Error(t, cfg.Set("nosection", "x"))
}

func TestValidateAndFix(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Search.MaxResults = -3
	cfg.Search.SearchDelayMs = -1
	cfg.Daemon.LogLevel = "loud"

	warnings := cfg.ValidateAndFix()
	assert.Len(t, warnings, 3)
	assert.Equal(t, 8, cfg.Search.MaxResults)
	assert.Equal(t, 150, cfg.Search.SearchDelayMs)
	assert.Equal(t, "info", cfg.Daemon.LogLevel)

	// Zero max_results is legal and left alone.
	cfg.Search.MaxResults = 0
	assert.Empty(t, cfg.ValidateAndFix())
	assert.Equal(t, 0, cfg.Search.MaxResults)
}

func TestPaths(t *testing.T) {
	t.Parallel()

	p := &Paths{ConfigDir: "/c", DataDir: "/d", RuntimeDir: "/r"}
	assert.Equal(t, filepath.Join("/c", "config.yaml"), p.ConfigFile())
	assert.Equal(t, filepath.Join("/d", "usage.db"), p.DatabaseFile())
	assert.Equal(t, filepath.Join("/r", "daemon.sock"), p.SocketFile())
	assert.Equal(t, filepath.Join("/r", "beacon.lock"), p.LockFile())
}

func TestEnsureDirectories(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	p := &Paths{
		ConfigDir:  filepath.Join(base, "config"),
		DataDir:    filepath.Join(base, "data"),
		RuntimeDir: filepath.Join(base, "run"),
	}
	require.NoError(t, p.EnsureDirectories())
	for _, dir := range []string{p.ConfigDir, p.DataDir, p.RuntimeDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
