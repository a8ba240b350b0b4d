package lksearch

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lightkurve/lksearch/internal/filex"
)

// Product is one queryable remote item as returned by an archive search:
// where it can be fetched from and where it lands in the local cache.
// Products are immutable once obtained from a query.
type Product struct {
	// Mission is the archive collection name (TESS, Kepler, K2, ...); it
	// becomes the cache subdirectory under mastDownload/.
	Mission string

	// ObsID is the archive's observation identifier.
	ObsID string

	// GroupDir is the observation-specific directory the product file is
	// cached under (typically the archive's textual obs_id).
	GroupDir string

	// FileName is the product's target local filename.
	FileName string

	// ArchiveURL is the archive-hosted retrieval URL; empty when the
	// product is not archive-hosted.
	ArchiveURL string

	// CloudURI is the s3:// mirror location; empty when the product has no
	// cloud-hosted variant.
	CloudURI string

	TargetName  string
	Description string
	Pipeline    string
	ExpTime     float64
	Sequence    int
	Size        int64
	Distance    float64
}

// HasArchive reports whether an archive-hosted source exists.
func (p Product) HasArchive() bool { return p.ArchiveURL != "" }

// HasCloud reports whether a cloud-hosted variant exists.
func (p Product) HasCloud() bool { return p.CloudURI != "" }

// cacheSubdir is the fixed namespace under the cache root shared with the
// MAST download convention.
const cacheSubdir = "mastDownload"

// LocalPath computes the expected cache location for the product:
// <cacheRoot>/mastDownload/<Mission>/<GroupDir>/<FileName>. The result is
// containment-checked against cacheRoot; a path that escapes the root
// (e.g. a hostile filename with ".." segments) fails with
// filex.ErrOutsideRoot.
func (p Product) LocalPath(cacheRoot string) (string, error) {
	if p.FileName == "" {
		return "", fmt.Errorf("product %s has no filename", p.ObsID)
	}

	parts := []string{cacheRoot, cacheSubdir}
	if p.Mission != "" {
		parts = append(parts, p.Mission)
	}
	if p.GroupDir != "" {
		parts = append(parts, p.GroupDir)
	}
	parts = append(parts, p.FileName)

	path := filepath.Join(parts...)
	if err := filex.WithinRoot(cacheRoot, path); err != nil {
		return "", err
	}
	return path, nil
}

func (p Product) String() string {
	var b strings.Builder
	b.WriteString(p.FileName)
	if p.Mission != "" {
		fmt.Fprintf(&b, " (%s", p.Mission)
		if p.Sequence > 0 {
			fmt.Fprintf(&b, " %s", p.sequenceLabel())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// sequenceLabel renders the sequence number, using the archive's
// half-campaign labels (91 -> "09a") for split K2 campaigns.
func (p Product) sequenceLabel() string {
	if p.Mission == MissionK2 {
		if label, ok := splitCampaignLabels[p.Sequence]; ok {
			return label
		}
	}
	return strconv.Itoa(p.Sequence)
}
