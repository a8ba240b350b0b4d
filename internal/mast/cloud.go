package mast

import "strings"

// cloudBuckets maps the missions mirrored to the public stpubdata bucket.
// Key is the CAOM obs_collection value; value is the bucket key prefix.
var cloudBuckets = map[string]string{
	"TESS":   "s3://stpubdata/tess",
	"Kepler": "s3://stpubdata/kepler",
	"K2":     "s3://stpubdata/k2",
}

// CloudAvailable reports whether a mission's products are mirrored to the
// public cloud bucket at all.
func CloudAvailable(collection string) bool {
	_, ok := cloudBuckets[collection]
	return ok
}

// CloudURI maps a product's mast: data URI onto its mirror location in the
// public bucket. Returns "" when the product has no cloud-hosted variant
// (unsupported mission or non-mast URI).
//
// Convention: "mast:TESS/product/<name>.fits" mirrors to
// "s3://stpubdata/tess/product/<name>.fits" — the mission segment of the
// URI selects the bucket prefix, the remainder is kept verbatim.
func CloudURI(p Product) string {
	rest, ok := strings.CutPrefix(p.DataURI, "mast:")
	if !ok {
		return ""
	}
	mission, path, ok := strings.Cut(rest, "/")
	if !ok || path == "" {
		return ""
	}
	prefix, ok := cloudBuckets[mission]
	if !ok {
		return ""
	}
	return prefix + "/" + path
}
