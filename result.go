package lksearch

import (
	"context"
	"fmt"
	"strings"
)

// SearchResult is an ordered table of products matched by a search. Filter
// methods return narrowed copies; the receiver is never mutated.
type SearchResult struct {
	client *Client
	rows   []Product
}

// Len returns the number of product rows.
func (s *SearchResult) Len() int { return len(s.rows) }

// Table returns the product rows in result order.
func (s *SearchResult) Table() []Product { return s.rows }

// At returns a single-row result. Negative indices count from the end, so
// At(-1) is the last row.
func (s *SearchResult) At(i int) (*SearchResult, error) {
	if i < 0 {
		i += len(s.rows)
	}
	if i < 0 || i >= len(s.rows) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.rows))
	}
	return s.filtered(func(j int, p Product) bool { return j == i }), nil
}

// Slice returns the rows in [from, to) as a new result. Negative indices
// count from the end and both bounds are clamped to the table, so a range
// reaching past either end is not an error.
func (s *SearchResult) Slice(from, to int) *SearchResult {
	n := len(s.rows)
	if from < 0 {
		from += n
	}
	if to < 0 {
		to += n
	}
	from = max(0, min(from, n))
	to = max(from, min(to, n))
	return s.filtered(func(i int, _ Product) bool { return i >= from && i < to })
}

// Cubedata narrows the result to target-pixel / cube products.
func (s *SearchResult) Cubedata() *SearchResult {
	return s.filtered(func(_ int, p Product) bool { return isCubedata(p) })
}

// Timeseries narrows the result to light-curve products.
func (s *SearchResult) Timeseries() *SearchResult {
	return s.filtered(func(_ int, p Product) bool { return isTimeseries(p) })
}

// FilterTable truncates the result to at most limit rows. Fewer available
// rows than the limit is not an error. A non-positive limit keeps everything.
func (s *SearchResult) FilterTable(limit int) *SearchResult {
	if limit <= 0 || limit >= len(s.rows) {
		return s.filtered(func(int, Product) bool { return true })
	}
	return s.filtered(func(i int, _ Product) bool { return i < limit })
}

func (s *SearchResult) filtered(keep func(int, Product) bool) *SearchResult {
	out := &SearchResult{client: s.client}
	for i, p := range s.rows {
		if keep(i, p) {
			out.rows = append(out.rows, p)
		}
	}
	return out
}

func (s *SearchResult) String() string {
	if len(s.rows) == 0 {
		return "SearchResult (empty)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SearchResult (%d products)\n", len(s.rows))
	for _, p := range s.rows {
		fmt.Fprintf(&b, "  %s\n", p)
	}
	return b.String()
}

// Download resolves every row of the result into a manifest using the
// client's configured cloud/cache policy. An empty result yields an empty
// manifest and a warning rather than an error.
func (s *SearchResult) Download(ctx context.Context) (Manifest, error) {
	if len(s.rows) == 0 {
		s.client.log.Warn(ctx, "Cannot download: empty search result")
		return Manifest{}, nil
	}

	opts, err := DownloadOptionsFrom(s.client.settings)
	if err != nil {
		return nil, err
	}
	return NewDownloader(s.client.fetcher, s.client.log).Download(ctx, s.rows, opts)
}

// isCubedata matches target pixel files, FFI cutouts, and other cube
// products.
func isCubedata(p Product) bool {
	name := strings.ToLower(p.FileName)
	if strings.Contains(name, "_tp.fits") || strings.Contains(name, "targ.fits") ||
		strings.Contains(name, "astrocut") {
		return true
	}
	return strings.Contains(strings.ToLower(p.Description), "target pixel")
}

// isTimeseries matches light-curve products.
func isTimeseries(p Product) bool {
	name := strings.ToLower(p.FileName)
	if strings.Contains(name, "_lc.fits") || strings.Contains(name, "llc.fits") ||
		strings.Contains(name, "slc.fits") {
		return true
	}
	return strings.Contains(strings.ToLower(p.Description), "light curve")
}
