package lksearch

import (
	"fmt"
	"strings"
)

// Status is the resolution outcome of one manifest row.
type Status string

const (
	StatusComplete Status = "COMPLETE"
	StatusError    Status = "ERROR"
	StatusSkipped  Status = "SKIPPED"
)

// ManifestRow records the outcome of resolving one requested product.
type ManifestRow struct {
	// LocalPath is the cached file's path, or the cloud URI when the
	// product is referenced rather than downloaded. Empty on error.
	LocalPath string

	// Status is COMPLETE, ERROR, or SKIPPED.
	Status Status

	// Message carries the failure reason or an informational note; may be
	// empty.
	Message string

	// URL is the source the product was (or would have been) fetched from;
	// may be empty.
	URL string
}

// Manifest is the ordered per-product result of a download call. Row order
// matches the request order regardless of transfer completion order.
type Manifest []ManifestRow

// Completed counts rows with Status COMPLETE.
func (m Manifest) Completed() int { return m.count(StatusComplete) }

// Errored counts rows with Status ERROR.
func (m Manifest) Errored() int { return m.count(StatusError) }

func (m Manifest) count(s Status) int {
	n := 0
	for _, row := range m {
		if row.Status == s {
			n++
		}
	}
	return n
}

func (m Manifest) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Manifest (%d products, %d complete, %d error)\n",
		len(m), m.Completed(), m.Errored())
	for _, row := range m {
		fmt.Fprintf(&b, "  %-8s %s", row.Status, row.LocalPath)
		if row.Message != "" {
			fmt.Fprintf(&b, "  (%s)", row.Message)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
