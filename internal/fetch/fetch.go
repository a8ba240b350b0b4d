// Package fetch implements the transfer collaborators used by the manifest
// resolver: an HTTP fetcher for archive URLs and an S3 fetcher for
// cloud-hosted products. A Router dispatches on the source scheme.
//
// Fetchers perform a single attempt per call; retry policy, if any, belongs
// to the caller. Destination files are written atomically: bytes go to a
// uniquely named temp file next to the destination and are renamed into
// place only on success, so a failed transfer never leaves a partial file
// at the expected cache path.
package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Fetcher copies a remote source (URL or URI) to a local destination path.
type Fetcher interface {
	Fetch(ctx context.Context, source, dest string) error
}

// Router picks a fetcher based on the source scheme: s3:// sources go to
// Cloud, everything else to Archive.
type Router struct {
	Archive Fetcher
	Cloud   Fetcher
}

func (r Router) Fetch(ctx context.Context, source, dest string) error {
	if strings.HasPrefix(source, "s3://") {
		if r.Cloud == nil {
			return fmt.Errorf("fetch %s: no cloud fetcher configured", source)
		}
		return r.Cloud.Fetch(ctx, source, dest)
	}
	if r.Archive == nil {
		return fmt.Errorf("fetch %s: no archive fetcher configured", source)
	}
	return r.Archive.Fetch(ctx, source, dest)
}

// writeAtomic streams body into dest via a temp file in the same directory.
// The temp file is removed on any failure.
func writeAtomic(dest string, body io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(dest), err)
	}

	tmp := dest + ".part-" + uuid.NewString()
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o660)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if _, err = io.Copy(f, body); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err = os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("rename %s: %w", dest, err)
	}
	return nil
}
