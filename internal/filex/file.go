// Package filex provides filesystem helpers shared by the cache and config
// layers: idempotent directory creation and containment checks that keep
// every cache operation confined to the configured cache root.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot reports a computed path that escapes its expected root
// directory. Callers must treat it as fatal and abort the whole operation.
var ErrOutsideRoot = errors.New("path escapes root directory")

// EnsureDir makes dir (and any missing parents) and returns its absolute
// path. Repeated calls are idempotent.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// WithinRoot verifies that path resolves to a location under root. Both
// arguments are cleaned and made absolute before comparison, so ".."
// segments cannot sneak a path out of the root.
func WithinRoot(root, path string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("abs %s: %w", root, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("abs %s: %w", path, err)
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s not under %s", ErrOutsideRoot, absPath, absRoot)
	}
	return nil
}

// Exists reports whether a regular file is present at path.
func Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
