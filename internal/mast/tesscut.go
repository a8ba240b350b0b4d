package mast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	tesscutSectorPath   = "/tesscut/api/v0.1/sector"
	tesscutAstrocutPath = "/tesscut/api/v0.1/astrocut"
)

// SectorEntry is one row of a TESSCut sector lookup: a sector whose
// full-frame images cover the queried position, with the camera/CCD the
// position falls on.
type SectorEntry struct {
	SectorName string `json:"sectorName"`
	Sector     Seq    `json:"sector"`
	Camera     Seq    `json:"camera"`
	CCD        Seq    `json:"ccd"`
}

// TESSCutSectors lists the TESS sectors whose full-frame images cover the
// given position, via the TESSCut sector service.
func (c *Client) TESSCutSectors(ctx context.Context, ra, dec float64) ([]SectorEntry, error) {
	q := url.Values{}
	q.Set("ra", strconv.FormatFloat(ra, 'f', -1, 64))
	q.Set("dec", strconv.FormatFloat(dec, 'f', -1, 64))

	u := c.baseURL + tesscutSectorPath + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build tesscut sector request: %w", err)
	}

	c.log.Debug(ctx, "tesscut sector lookup", "ra", ra, "dec", dec)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tesscut sector lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tesscut sector lookup: HTTP %s: %s",
			resp.Status, strings.TrimSpace(string(body)))
	}

	var out struct {
		Results []SectorEntry `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode tesscut sector response: %w", err)
	}
	return out.Results, nil
}

// TESSCutURL builds the astrocut retrieval URL for a square full-frame
// image cutout of sizePx pixels on a side, centered on the position.
func (c *Client) TESSCutURL(ra, dec float64, sector, sizePx int) string {
	q := url.Values{}
	q.Set("ra", strconv.FormatFloat(ra, 'f', -1, 64))
	q.Set("dec", strconv.FormatFloat(dec, 'f', -1, 64))
	q.Set("x", strconv.Itoa(sizePx))
	q.Set("y", strconv.Itoa(sizePx))
	q.Set("units", "px")
	q.Set("sector", strconv.Itoa(sector))
	return c.baseURL + tesscutAstrocutPath + "?" + q.Encode()
}

// FFICadence returns the full-frame image exposure time, in seconds, for a
// TESS sector. The FFI cadence shortened twice over the mission: 30 min in
// the prime mission, 10 min from sector 27, 200 s from sector 56.
func FFICadence(sector int) float64 {
	switch {
	case sector >= 56:
		return 200
	case sector >= 27:
		return 600
	default:
		return 1800
	}
}
