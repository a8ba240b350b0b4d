package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lightkurve/lksearch/internal/filex"
)

// ClearCache removes the immediate subdirectories of the cache root.
//
// With dryRun true (the safe default for callers) nothing is deleted; the
// returned slice lists the directories that would be removed. With dryRun
// false each listed directory is deleted recursively; a directory that
// fails to delete does not stop the rest, and the error reports every
// failure while the returned slice lists what was actually removed.
//
// Every candidate path is containment-checked against the cache root before
// any deletion; a violation aborts the whole operation with
// filex.ErrOutsideRoot and nothing is removed.
func (c *Settings) ClearCache(dryRun bool) ([]string, error) {
	root, err := c.CacheDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read cache dir %s: %w", root, err)
	}

	var targets []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := filepath.Join(root, e.Name())
		if err := filex.WithinRoot(root, p); err != nil {
			return nil, err
		}
		targets = append(targets, p)
	}

	if dryRun {
		return targets, nil
	}

	var removed []string
	var errs []error
	for _, p := range targets {
		if err := os.RemoveAll(p); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
			continue
		}
		removed = append(removed, p)
	}
	return removed, errors.Join(errs...)
}
