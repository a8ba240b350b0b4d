// Package mast is a thin HTTP/JSON binding to the MAST archive invoke API.
// It resolves target names, runs CAOM position queries, and lists data
// products for observations. The archive's query semantics are owned by
// MAST; this package only shapes requests and decodes rows.
package mast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lightkurve/lksearch/internal/logging"
)

// DefaultBaseURL is the production MAST portal endpoint.
const DefaultBaseURL = "https://mast.stsci.edu"

const (
	invokePath   = "/api/v0/invoke"
	downloadPath = "/api/v0.1/Download/file"

	serviceNameLookup  = "Mast.Name.Lookup"
	serviceCaomCone    = "Mast.Caom.Filtered.Position"
	serviceCaomProduct = "Mast.Caom.Products"
)

// ErrResolve means the archive could not turn a target name into coordinates.
var ErrResolve = errors.New("unable to resolve target name")

// Client talks to one MAST endpoint. The zero value is not usable; call New.
type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// Option adjusts Client construction.
type Option func(*Client)

// WithBaseURL points the client at an alternate endpoint (test servers).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger replaces the default logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     logging.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type invokeRequest struct {
	Service string `json:"service"`
	Params  any    `json:"params"`
	Format  string `json:"format"`
}

// invoke posts a service request and unmarshals the whole response body
// into out. MAST wraps tabular responses in {"status": ..., "data": [...]};
// some services (name lookup) use their own top-level shape, so decoding is
// left to the caller's out type.
func (c *Client) invoke(ctx context.Context, service string, params any, out any) error {
	payload, err := json.Marshal(invokeRequest{Service: service, Params: params, Format: "json"})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", service, err)
	}

	form := url.Values{"request": {string(payload)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+invokePath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build %s request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.log.Debug(ctx, "mast invoke", "service", service)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: HTTP %s: %s", service, resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", service, err)
	}
	return nil
}

// ResolveTarget turns a target name ("pi Mensae", "KIC 11904151") into
// ICRS coordinates in degrees.
func (c *Client) ResolveTarget(ctx context.Context, name string) (ra, dec float64, err error) {
	var out struct {
		ResolvedCoordinate []struct {
			RA   float64 `json:"ra"`
			Decl float64 `json:"decl"`
		} `json:"resolvedCoordinate"`
	}

	params := map[string]any{"input": name}
	if err := c.invoke(ctx, serviceNameLookup, params, &out); err != nil {
		return 0, 0, err
	}
	if len(out.ResolvedCoordinate) == 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrResolve, name)
	}
	return out.ResolvedCoordinate[0].RA, out.ResolvedCoordinate[0].Decl, nil
}

type tableEnvelope[T any] struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
	Data   []T    `json:"data"`
}

// SearchObservations runs a filtered cone search and returns matching
// CAOM observations.
func (c *Client) SearchObservations(ctx context.Context, q Query) ([]Observation, error) {
	filters := make([]map[string]any, 0, 3)
	if len(q.Collections) > 0 {
		filters = append(filters, map[string]any{"paramName": "obs_collection", "values": q.Collections})
	}
	if len(q.Provenance) > 0 {
		filters = append(filters, map[string]any{"paramName": "provenance_name", "values": q.Provenance})
	}
	if len(q.SequenceNumbers) > 0 {
		filters = append(filters, map[string]any{"paramName": "sequence_number", "values": q.SequenceNumbers})
	}

	radiusDeg := q.RadiusArcsec / 3600.0
	params := map[string]any{
		"columns":  "*",
		"filters":  filters,
		"position": fmt.Sprintf("%f, %f, %f", q.RA, q.Dec, radiusDeg),
	}

	var out tableEnvelope[Observation]
	if err := c.invoke(ctx, serviceCaomCone, params, &out); err != nil {
		return nil, err
	}
	if s := strings.ToUpper(out.Status); s != "" && s != "COMPLETE" {
		return nil, fmt.Errorf("%s: status %s: %s", serviceCaomCone, out.Status, out.Msg)
	}
	return out.Data, nil
}

// Products lists the data products attached to an observation.
func (c *Client) Products(ctx context.Context, obsID ID) ([]Product, error) {
	var out tableEnvelope[Product]
	params := map[string]any{"obsid": string(obsID)}
	if err := c.invoke(ctx, serviceCaomProduct, params, &out); err != nil {
		return nil, err
	}
	if s := strings.ToUpper(out.Status); s != "" && s != "COMPLETE" {
		return nil, fmt.Errorf("%s: status %s: %s", serviceCaomProduct, out.Status, out.Msg)
	}
	return out.Data, nil
}

// DownloadURL returns the archive-hosted retrieval URL for a product's
// data URI.
func (c *Client) DownloadURL(p Product) string {
	if p.DataURI == "" {
		return ""
	}
	return c.baseURL + downloadPath + "?uri=" + url.QueryEscape(p.DataURI)
}
