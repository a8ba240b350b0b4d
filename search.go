package lksearch

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/lightkurve/lksearch/config"
	"github.com/lightkurve/lksearch/internal/fetch"
	"github.com/lightkurve/lksearch/internal/logging"
	"github.com/lightkurve/lksearch/internal/mast"
)

// defaultRadiusArcsec keeps un-radiused searches targeted: wide enough to
// absorb archive astrometry jitter, narrow enough to exclude neighbors.
const defaultRadiusArcsec = 3.0

// defaultCutoutPx is the side length of a full-frame image cutout when the
// caller gives none.
const defaultCutoutPx = 10

// pipelineTESSCut labels full-frame image cutout rows served by TESSCut.
const pipelineTESSCut = "TESScut"

// Client binds the archive query service, the transfer collaborators, and
// the settings namespace into the search API.
type Client struct {
	mast     *mast.Client
	settings *config.Settings
	fetcher  fetch.Fetcher
	log      logging.Logger
}

// ClientOption adjusts Client construction.
type ClientOption func(*Client)

// WithMAST replaces the archive client (test servers).
func WithMAST(m *mast.Client) ClientOption {
	return func(c *Client) { c.mast = m }
}

// WithSettings supplies a pre-built settings object instead of loading the
// process-wide configuration.
func WithSettings(s *config.Settings) ClientOption {
	return func(c *Client) { c.settings = s }
}

// WithFetcher replaces the transfer collaborator.
func WithFetcher(f fetch.Fetcher) ClientOption {
	return func(c *Client) { c.fetcher = f }
}

// WithLogger replaces the default logger.
func WithLogger(l logging.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient builds a Client with production defaults: configuration from
// the lksearch config file, the public MAST endpoint, and an HTTP+S3
// fetcher pair routed by source scheme.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{log: logging.Default()}
	for _, o := range opts {
		o(c)
	}

	if c.settings == nil {
		settings, err := config.Load()
		if err != nil {
			return nil, err
		}
		c.settings = settings
	}
	if c.mast == nil {
		c.mast = mast.New(mast.WithLogger(c.log))
	}
	if c.fetcher == nil {
		cloud, err := fetch.NewS3Fetcher(context.Background())
		if err != nil {
			return nil, err
		}
		c.fetcher = fetch.Router{Archive: fetch.NewHTTPFetcher(0), Cloud: cloud}
	}
	return c, nil
}

// Settings exposes the client's configuration namespace.
func (c *Client) Settings() *config.Settings { return c.settings }

type searchOptions struct {
	radiusArcsec float64
	pipelines    []string
	sequences    []int
	expTime      string
	tessCutPx    int
}

// SearchOption narrows an archive search.
type SearchOption func(*searchOptions)

// WithRadius widens the cone search to the given radius in arcseconds.
func WithRadius(arcsec float64) SearchOption {
	return func(o *searchOptions) { o.radiusArcsec = arcsec }
}

// WithPipeline restricts results to the named processing pipelines
// (SPOC, TESS-SPOC, QLP, Kepler, K2, ...). Matching is case-insensitive.
func WithPipeline(names ...string) SearchOption {
	return func(o *searchOptions) { o.pipelines = append(o.pipelines, names...) }
}

// WithExpTime filters by cadence: "fast", "short", "long", "any", or a
// number of seconds for an exact match.
func WithExpTime(v string) SearchOption {
	return func(o *searchOptions) { o.expTime = strings.ToLower(strings.TrimSpace(v)) }
}

// WithTESSCut adds full-frame image cutout rows to the result: one row per
// TESS sector whose FFIs cover the target, retrievable through the TESSCut
// service as a sizePx × sizePx pixel cutout. A non-positive size uses the
// default (10 px). Sector and pipeline filters apply to cutout rows too.
func WithTESSCut(sizePx int) SearchOption {
	return func(o *searchOptions) {
		if sizePx < 1 {
			sizePx = defaultCutoutPx
		}
		o.tessCutPx = sizePx
	}
}

func withSequence(nums ...int) SearchOption {
	return func(o *searchOptions) { o.sequences = append(o.sequences, nums...) }
}

// MASTSearch queries every mission collection for the target. The target
// may be an object name resolvable by the archive or a "ra, dec" pair in
// decimal degrees.
func (c *Client) MASTSearch(ctx context.Context, target string, opts ...SearchOption) (*SearchResult, error) {
	return c.search(ctx, nil, target, opts)
}

func (c *Client) search(ctx context.Context, collections []string, target string, opts []SearchOption) (*SearchResult, error) {
	o := searchOptions{radiusArcsec: defaultRadiusArcsec}
	for _, fn := range opts {
		fn(&o)
	}

	ra, dec, err := c.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	obs, err := c.mast.SearchObservations(ctx, mast.Query{
		RA:              ra,
		Dec:             dec,
		RadiusArcsec:    o.radiusArcsec,
		Collections:     collections,
		Provenance:      o.pipelines,
		SequenceNumbers: o.sequences,
	})
	if err != nil {
		return nil, err
	}

	var rows []Product
	for _, ob := range obs {
		products, err := c.mast.Products(ctx, ob.ObsID)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			if !strings.EqualFold(p.ProductType, "SCIENCE") {
				continue
			}
			rows = append(rows, Product{
				Mission:     ob.Collection,
				ObsID:       string(ob.ObsID),
				GroupDir:    ob.ObsName,
				FileName:    p.Filename,
				ArchiveURL:  c.mast.DownloadURL(p),
				CloudURI:    mast.CloudURI(p),
				TargetName:  ob.TargetName,
				Description: p.Description,
				Pipeline:    ob.Provenance,
				ExpTime:     ob.ExpTime,
				Sequence:    int(ob.SequenceNumber),
				Size:        p.Size,
				Distance:    ob.Distance,
			})
		}
	}

	if o.tessCutPx > 0 {
		cuts, err := c.tessCutProducts(ctx, target, ra, dec, o)
		if err != nil {
			return nil, err
		}
		rows = append(rows, cuts...)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w for target %q", ErrNoData, target)
	}

	rows = filterExpTime(rows, o.expTime)

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Distance != rows[j].Distance {
			return rows[i].Distance < rows[j].Distance
		}
		if rows[i].Mission != rows[j].Mission {
			return rows[i].Mission < rows[j].Mission
		}
		if rows[i].Sequence != rows[j].Sequence {
			return rows[i].Sequence < rows[j].Sequence
		}
		return rows[i].FileName < rows[j].FileName
	})

	return &SearchResult{client: c, rows: rows}, nil
}

// tessCutProducts builds one cutout row per sector covering the position,
// honoring the caller's sector and pipeline filters.
func (c *Client) tessCutProducts(ctx context.Context, target string, ra, dec float64, o searchOptions) ([]Product, error) {
	if len(o.pipelines) > 0 && !containsFold(o.pipelines, pipelineTESSCut) {
		return nil, nil
	}

	sectors, err := c.mast.TESSCutSectors(ctx, ra, dec)
	if err != nil {
		return nil, err
	}

	var rows []Product
	for _, s := range sectors {
		sector := int(s.Sector)
		if len(o.sequences) > 0 && !slices.Contains(o.sequences, sector) {
			continue
		}
		rows = append(rows, Product{
			Mission:     MissionTESS,
			GroupDir:    s.SectorName,
			FileName:    fmt.Sprintf("%s_%.4f_%.4f_%dx%d_astrocut.fits", s.SectorName, ra, dec, o.tessCutPx, o.tessCutPx),
			ArchiveURL:  c.mast.TESSCutURL(ra, dec, sector, o.tessCutPx),
			TargetName:  target,
			Description: fmt.Sprintf("TESS FFI Cutout (sector %d)", sector),
			Pipeline:    pipelineTESSCut,
			ExpTime:     mast.FFICadence(sector),
			Sequence:    sector,
		})
	}
	return rows, nil
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

// resolveTarget accepts "ra, dec" (or "ra dec") in decimal degrees, falling
// back to the archive's name resolver for anything else.
func (c *Client) resolveTarget(ctx context.Context, target string) (float64, float64, error) {
	if ra, dec, ok := parseRADec(target); ok {
		return ra, dec, nil
	}
	return c.mast.ResolveTarget(ctx, target)
}

func parseRADec(target string) (ra, dec float64, ok bool) {
	fields := strings.FieldsFunc(strings.TrimSpace(target), func(r rune) bool {
		return r == ',' || r == ' '
	})
	clean := fields[:0]
	for _, f := range fields {
		if f != "" {
			clean = append(clean, f)
		}
	}
	if len(clean) != 2 {
		return 0, 0, false
	}

	ra, err1 := strconv.ParseFloat(clean[0], 64)
	dec, err2 := strconv.ParseFloat(strings.TrimPrefix(clean[1], "+"), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return ra, dec, true
}

// filterExpTime applies the cadence filter: fast is sub-minute cadence,
// short is 1–2 minute cadence, long is everything above 200 s (FFI-derived
// products), a bare number matches exactly, and ""/"any" passes everything.
func filterExpTime(rows []Product, filter string) []Product {
	if filter == "" || filter == "any" {
		return rows
	}

	keep := func(t float64) bool { return true }
	switch filter {
	case "fast":
		keep = func(t float64) bool { return t > 0 && t < 60 }
	case "short":
		keep = func(t float64) bool { return t >= 60 && t <= 120 }
	case "long":
		keep = func(t float64) bool { return t > 200 }
	default:
		exact, err := strconv.ParseFloat(filter, 64)
		if err != nil {
			return rows
		}
		keep = func(t float64) bool { return t == exact }
	}

	out := rows[:0]
	for _, r := range rows {
		if keep(r.ExpTime) {
			out = append(out, r)
		}
	}
	return out
}
