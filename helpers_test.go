package lksearch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightkurve/lksearch/config"
)

// newTestSettings builds a settings object rooted in temp directories so
// tests never touch ~/.lksearch.
func newTestSettings(t *testing.T) *config.Settings {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config"))
	require.NoError(t, err)
	require.NoError(t, cfg.Set("cache_dir", filepath.Join(t.TempDir(), "cache")))
	return cfg
}
