package lksearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightkurve/lksearch/internal/mast"
)

const (
	lookupResponse = `{"resolvedCoordinate":[{"ra":84.291188,"decl":-80.469119}]}`

	observationsResponse = `{"status":"COMPLETE","data":[
		{"obsid":17000012345,"obs_id":"tess2018206045859-s0001-0000000261136679-0120-s",
		 "target_name":"pi Men","obs_collection":"TESS","provenance_name":"SPOC",
		 "sequence_number":1,"s_ra":84.291188,"s_dec":-80.469119,"t_exptime":120,
		 "distance":0}
	]}`

	productsResponse = `{"status":"COMPLETE","data":[
		{"obsID":17000012345,"obs_collection":"TESS","description":"Light curves",
		 "productType":"SCIENCE","dataURI":"mast:TESS/product/tess-s0001_lc.fits",
		 "productFilename":"tess-s0001_lc.fits","size":2039040},
		{"obsID":17000012345,"obs_collection":"TESS","description":"Target pixel files",
		 "productType":"SCIENCE","dataURI":"mast:TESS/product/tess-s0001_tp.fits",
		 "productFilename":"tess-s0001_tp.fits","size":48039040},
		{"obsID":17000012345,"obs_collection":"TESS","description":"full data validation report",
		 "productType":"AUXILIARY","dataURI":"mast:TESS/product/tess-s0001_dvr.pdf",
		 "productFilename":"tess-s0001_dvr.pdf","size":102400}
	]}`

	tesscutSectorsResponse = `{"results":[
		{"sectorName":"tess-s0001-1-1","sector":"0001","camera":"1","ccd":"1"},
		{"sectorName":"tess-s0028-4-2","sector":"0028","camera":"4","ccd":"2"}
	]}`
)

// newTestClient wires a Client against a canned MAST endpoint.
func newTestClient(t *testing.T, fetcher *fakeFetcher) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tesscut/api/v0.1/sector" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(tesscutSectorsResponse))
			return
		}

		require.NoError(t, r.ParseForm())
		var req struct {
			Service string `json:"service"`
		}
		require.NoError(t, json.Unmarshal([]byte(r.PostFormValue("request")), &req))

		w.Header().Set("Content-Type", "application/json")
		switch req.Service {
		case "Mast.Name.Lookup":
			_, _ = w.Write([]byte(lookupResponse))
		case "Mast.Caom.Filtered.Position":
			_, _ = w.Write([]byte(observationsResponse))
		case "Mast.Caom.Products":
			_, _ = w.Write([]byte(productsResponse))
		default:
			http.Error(w, "unknown service", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)

	if fetcher == nil {
		fetcher = &fakeFetcher{}
	}
	c, err := NewClient(
		WithMAST(mast.New(mast.WithBaseURL(srv.URL))),
		WithSettings(newTestSettings(t)),
		WithFetcher(fetcher),
	)
	require.NoError(t, err)
	return c
}

func TestTESSSearch_BuildsProductTable(t *testing.T) {
	c := newTestClient(t, nil)

	sr, err := c.TESSSearch(context.Background(), "pi Mensae", WithSector(1), WithPipeline("SPOC"))
	require.NoError(t, err)
	require.Equal(t, 2, sr.Len(), "only SCIENCE products are kept")

	for _, p := range sr.Table() {
		assert.Equal(t, MissionTESS, p.Mission)
		assert.Equal(t, "pi Men", p.TargetName)
		assert.Equal(t, 1, p.Sequence)
		assert.NotEmpty(t, p.ArchiveURL)
		assert.Contains(t, p.CloudURI, "s3://stpubdata/tess/")
	}
}

func TestTESSSearch_WithTESSCutAddsCutoutRows(t *testing.T) {
	c := newTestClient(t, nil)

	sr, err := c.TESSSearch(context.Background(), "pi Mensae", WithTESSCut(0))
	require.NoError(t, err)
	require.Equal(t, 4, sr.Len(), "two SCIENCE products plus one cutout per covering sector")

	var cuts []Product
	for _, p := range sr.Table() {
		if p.Pipeline == pipelineTESSCut {
			cuts = append(cuts, p)
		}
	}
	require.Len(t, cuts, 2)

	for _, p := range cuts {
		assert.Equal(t, MissionTESS, p.Mission)
		assert.Contains(t, p.ArchiveURL, "/tesscut/api/v0.1/astrocut")
		assert.Contains(t, p.ArchiveURL, "x=10", "zero size falls back to the default cutout")
		assert.Contains(t, p.FileName, "astrocut.fits")
		assert.Empty(t, p.CloudURI)
		assert.True(t, isCubedata(p), "cutouts are cube products")
	}

	// The prime-mission sector carries the 30 min FFI cadence, the
	// extended-mission one 10 min.
	assert.Equal(t, 1800.0, cuts[0].ExpTime)
	assert.Equal(t, 1, cuts[0].Sequence)
	assert.Equal(t, 600.0, cuts[1].ExpTime)
	assert.Equal(t, 28, cuts[1].Sequence)
}

func TestTESSSearch_TESSCutHonorsFilters(t *testing.T) {
	c := newTestClient(t, nil)

	// The sector filter drops the non-matching cutout.
	sr, err := c.TESSSearch(context.Background(), "pi Mensae", WithTESSCut(20), WithSector(1))
	require.NoError(t, err)
	var cuts int
	for _, p := range sr.Table() {
		if p.Pipeline == pipelineTESSCut {
			cuts++
			assert.Equal(t, 1, p.Sequence)
			assert.Contains(t, p.ArchiveURL, "x=20")
		}
	}
	assert.Equal(t, 1, cuts)

	// A pipeline filter that excludes TESScut yields no cutout rows at all.
	sr, err = c.TESSSearch(context.Background(), "pi Mensae", WithTESSCut(10), WithPipeline("SPOC"))
	require.NoError(t, err)
	for _, p := range sr.Table() {
		assert.NotEqual(t, pipelineTESSCut, p.Pipeline)
	}
}

func TestSearch_ResolvesDecimalCoordinates(t *testing.T) {
	// "ra, dec" targets bypass the name resolver entirely.
	c := newTestClient(t, nil)

	sr, err := c.KeplerSearch(context.Background(), "297.5835, 40.98339")
	require.NoError(t, err)
	assert.Positive(t, sr.Len())
}

func TestParseRADec(t *testing.T) {
	ra, dec, ok := parseRADec("297.5835, 40.98339")
	require.True(t, ok)
	assert.InDelta(t, 297.5835, ra, 1e-9)
	assert.InDelta(t, 40.98339, dec, 1e-9)

	ra, dec, ok = parseRADec("285.67942179 +50.24130576")
	require.True(t, ok)
	assert.InDelta(t, 285.67942179, ra, 1e-9)
	assert.InDelta(t, 50.24130576, dec, 1e-9)

	_, _, ok = parseRADec("pi Mensae")
	assert.False(t, ok)

	_, _, ok = parseRADec("19:02:43.1 +50:14:28.7")
	assert.False(t, ok, "sexagesimal strings go through the name resolver")
}

func TestSearch_NoObservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		var req struct {
			Service string `json:"service"`
		}
		require.NoError(t, json.Unmarshal([]byte(r.PostFormValue("request")), &req))

		w.Header().Set("Content-Type", "application/json")
		if req.Service == "Mast.Name.Lookup" {
			_, _ = w.Write([]byte(lookupResponse))
			return
		}
		_, _ = w.Write([]byte(`{"status":"COMPLETE","data":[]}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(
		WithMAST(mast.New(mast.WithBaseURL(srv.URL))),
		WithSettings(newTestSettings(t)),
		WithFetcher(&fakeFetcher{}),
	)
	require.NoError(t, err)

	_, err = c.TESSSearch(context.Background(), "TIC 41336498", WithSector(2))
	require.ErrorIs(t, err, ErrNoData)
}

func TestSearchResult_DownloadEndToEnd(t *testing.T) {
	f := &fakeFetcher{}
	c := newTestClient(t, f)

	sr, err := c.TESSSearch(context.Background(), "pi Mensae", WithSector(1))
	require.NoError(t, err)

	m, err := sr.Timeseries().Download(context.Background())
	require.NoError(t, err)
	require.Len(t, m, 1)

	assert.Equal(t, StatusComplete, m[0].Status)
	assert.FileExists(t, m[0].LocalPath)
	// PREFER_CLOUD defaults to true, so the cloud mirror is the source.
	assert.Contains(t, m[0].URL, "s3://stpubdata/tess/")
}

func TestSearchResult_EmptyDownloadWarnsNotErrors(t *testing.T) {
	c := newTestClient(t, nil)

	sr, err := c.TESSSearch(context.Background(), "pi Mensae")
	require.NoError(t, err)

	// Nothing in the canned table is a DV report, so this narrows to zero.
	empty := sr.filtered(func(int, Product) bool { return false })
	m, err := empty.Download(context.Background())
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestFilterExpTime(t *testing.T) {
	rows := []Product{
		{FileName: "fast.fits", ExpTime: 20},
		{FileName: "short.fits", ExpTime: 120},
		{FileName: "long.fits", ExpTime: 1800},
	}

	names := func(ps []Product) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.FileName)
		}
		return out
	}

	assert.Equal(t, []string{"fast.fits"}, names(filterExpTime(append([]Product(nil), rows...), "fast")))
	assert.Equal(t, []string{"short.fits"}, names(filterExpTime(append([]Product(nil), rows...), "short")))
	assert.Equal(t, []string{"long.fits"}, names(filterExpTime(append([]Product(nil), rows...), "long")))
	assert.Equal(t, []string{"fast.fits"}, names(filterExpTime(append([]Product(nil), rows...), "20")))
	assert.Len(t, filterExpTime(append([]Product(nil), rows...), "any"), 3)
	assert.Len(t, filterExpTime(append([]Product(nil), rows...), ""), 3)
}
