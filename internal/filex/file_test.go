package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNestedDirectory(t *testing.T) {
	tmp := t.TempDir()

	want := filepath.Join(tmp, "cache", "mastDownload")
	got, err := EnsureDir(want)
	require.NoError(t, err)
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()

	first, err := EnsureDir(filepath.Join(tmp, "cache"))
	require.NoError(t, err)
	second, err := EnsureDir(filepath.Join(tmp, "cache"))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	name := filepath.Join(tmp, "cache")
	require.NoError(t, os.WriteFile(name, []byte("x"), 0o660))

	_, err := EnsureDir(name)
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestWithinRoot(t *testing.T) {
	tmp := t.TempDir()

	require.NoError(t, WithinRoot(tmp, filepath.Join(tmp, "mastDownload", "TESS")))
	require.NoError(t, WithinRoot(tmp, tmp))

	err := WithinRoot(tmp, filepath.Join(tmp, ".."))
	require.ErrorIs(t, err, ErrOutsideRoot)

	err = WithinRoot(tmp, filepath.Join(tmp, "a", "..", "..", "etc"))
	require.ErrorIs(t, err, ErrOutsideRoot)
}

func TestExists(t *testing.T) {
	tmp := t.TempDir()

	require.False(t, Exists(filepath.Join(tmp, "missing.fits")))

	name := filepath.Join(tmp, "present.fits")
	require.NoError(t, os.WriteFile(name, []byte("data"), 0o660))
	require.True(t, Exists(name))

	// Directories are not cached files.
	require.False(t, Exists(tmp))
}
