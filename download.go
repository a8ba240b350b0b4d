package lksearch

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/lightkurve/lksearch/config"
	"github.com/lightkurve/lksearch/internal/fetch"
	"github.com/lightkurve/lksearch/internal/filex"
	"github.com/lightkurve/lksearch/internal/logging"
)

// Manifest messages shared with the MAST download convention.
const (
	msgCloudOnlyNoSource = "cloud-only mode: no cloud source"
	msgCloudLink         = "Link to S3 bucket for remote read"
	msgCached            = "Found cached file"
	msgNoSource          = "no archive or cloud source available"
	msgSkippedCancelled  = "cancelled before transfer"
)

const defaultConcurrency = 4

// DownloadOptions is an immutable snapshot of the cloud/cache policy applied
// to one download call.
type DownloadOptions struct {
	// CloudOnly rejects products that have no cloud-hosted variant.
	CloudOnly bool

	// PreferCloud picks the cloud source when a product has both.
	PreferCloud bool

	// DownloadCloud fetches cloud-hosted products locally; when false, the
	// manifest references the cloud URI instead of a local file.
	DownloadCloud bool

	// CacheDir is the cache root all local paths are computed under.
	CacheDir string

	// Concurrency bounds parallel transfers; values < 1 use the default.
	Concurrency int
}

// DownloadOptionsFrom snapshots the relevant settings into explicit options.
func DownloadOptionsFrom(s *config.Settings) (DownloadOptions, error) {
	var opts DownloadOptions
	var err error

	if opts.CloudOnly, err = s.GetBool("CLOUD_ONLY"); err != nil {
		return opts, err
	}
	if opts.PreferCloud, err = s.GetBool("PREFER_CLOUD"); err != nil {
		return opts, err
	}
	if opts.DownloadCloud, err = s.GetBool("DOWNLOAD_CLOUD"); err != nil {
		return opts, err
	}
	if opts.CacheDir, err = s.CacheDir(); err != nil {
		return opts, err
	}
	opts.Concurrency = defaultConcurrency
	return opts, nil
}

// Downloader turns product descriptors into a manifest, applying the
// cloud/local policy and cache-hit short-circuiting.
type Downloader struct {
	fetcher fetch.Fetcher
	log     logging.Logger
}

func NewDownloader(fetcher fetch.Fetcher, log logging.Logger) *Downloader {
	if log == nil {
		log = logging.Default()
	}
	return &Downloader{fetcher: fetcher, log: log}
}

// Download resolves every product into a manifest row, in input order.
//
// Per-item failures (no usable source, transfer errors) are recorded as
// ERROR rows and never abort the batch. Structural failures — the cache
// root cannot be created, or a computed path escapes the cache root — abort
// the whole call. An empty input yields an empty manifest and no error.
func (d *Downloader) Download(ctx context.Context, products []Product, opts DownloadOptions) (Manifest, error) {
	rows := make(Manifest, len(products))
	if len(products) == 0 {
		return rows, nil
	}

	// An empty cache dir would resolve to the working directory.
	if opts.CacheDir == "" {
		return nil, errors.New("download options: no cache directory configured")
	}

	cacheRoot, err := filex.EnsureDir(opts.CacheDir)
	if err != nil {
		return nil, err
	}

	// Compute every expected local path up front: a containment violation
	// anywhere aborts the batch before any transfer starts.
	paths := make([]string, len(products))
	for i, p := range products {
		path, err := p.LocalPath(cacheRoot)
		if errors.Is(err, filex.ErrOutsideRoot) {
			return nil, err
		}
		// Products without a usable filename become per-item errors below.
		paths[i] = path
	}

	limit := opts.Concurrency
	if limit < 1 {
		limit = defaultConcurrency
	}

	// Rows are index-addressed so the manifest keeps input order no matter
	// in which order transfers finish.
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range products {
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				rows[i] = ManifestRow{Status: StatusSkipped, Message: msgSkippedCancelled}
				return nil
			}
			rows[i] = d.resolve(ctx, products[i], paths[i], opts)
			return nil
		})
	}
	_ = g.Wait()

	return rows, nil
}

// resolve applies the per-descriptor policy:
//
//  1. cloud-only with no cloud variant is an error;
//  2. pick the source (cloud when preferred and present, else archive);
//  3. a preferred cloud source with downloads disabled resolves to the
//     cloud URI itself;
//  4. otherwise resolve to the expected cache path — reusing an existing
//     file untouched, else transferring from the chosen source.
func (d *Downloader) resolve(ctx context.Context, p Product, localPath string, opts DownloadOptions) ManifestRow {
	if opts.CloudOnly && !p.HasCloud() {
		return ManifestRow{Status: StatusError, Message: msgCloudOnlyNoSource, URL: p.ArchiveURL}
	}

	var source string
	switch {
	case opts.PreferCloud && p.HasCloud():
		source = p.CloudURI
	case p.HasArchive():
		source = p.ArchiveURL
	case p.HasCloud():
		source = p.CloudURI
	default:
		return ManifestRow{Status: StatusError, Message: msgNoSource}
	}

	if source == p.CloudURI && !opts.DownloadCloud {
		return ManifestRow{LocalPath: p.CloudURI, Status: StatusComplete, Message: msgCloudLink, URL: p.CloudURI}
	}

	if localPath == "" {
		return ManifestRow{Status: StatusError, Message: "product has no local filename", URL: source}
	}

	if filex.Exists(localPath) {
		d.log.Debug(ctx, "cache hit", "file", p.FileName)
		return ManifestRow{LocalPath: localPath, Status: StatusComplete, Message: msgCached, URL: source}
	}

	if err := d.fetcher.Fetch(ctx, source, localPath); err != nil {
		d.log.Warn(ctx, "download failed", "file", p.FileName, "source", source, "err", err)
		return ManifestRow{Status: StatusError, Message: err.Error(), URL: source}
	}

	d.log.Info(ctx, "downloaded", "file", p.FileName, "path", localPath)
	return ManifestRow{LocalPath: localPath, Status: StatusComplete, URL: source}
}
