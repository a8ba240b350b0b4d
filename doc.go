// Package lksearch searches the MAST archive for Kepler, K2, and TESS data
// products and downloads them into a local cache.
//
// A Client wraps the archive query service. Mission helpers (TESSSearch,
// KeplerSearch, K2Search) return a SearchResult that can be narrowed to
// cube data or timeseries products and then downloaded; Download returns a
// Manifest with one row per requested product, resolved to either a local
// cached path or a cloud URI depending on the configured cloud policy.
package lksearch
