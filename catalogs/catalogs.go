// Package catalogs exposes the static crossmatch configuration table: for
// each supported star catalog, the remote catalog identifier, the columns to
// request, how to rename them into the common schema, and which catalogs it
// may be crossmatched against. The table is declarative data consumed by
// generic lookup code; there is no query logic here.
package catalogs

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

//go:embed catalog_config.json
var rawConfig []byte

// ErrUnknownCatalog is returned by Lookup for names not in the table.
var ErrUnknownCatalog = errors.New("unknown catalog")

// Catalog describes how to query one external star catalog and map its
// columns onto the common output schema.
type Catalog struct {
	// Catalog is the remote catalog identifier (VizieR-style).
	Catalog string `json:"catalog"`

	// Columns are the columns requested from the remote catalog.
	Columns []string `json:"columns"`

	// RenameIn/RenameOut are parallel lists: RenameIn[i] in the remote
	// schema becomes RenameOut[i] in the common schema.
	RenameIn  []string `json:"rename_in"`
	RenameOut []string `json:"rename_out"`

	// DefaultMag is the magnitude column used for brightness filtering.
	DefaultMag string `json:"default_mag"`

	// CrossmatchType selects the matching strategy ("column" or "cone").
	CrossmatchType string `json:"crossmatch_type"`

	// CrossmatchCatalogs names the catalogs this one can be matched against.
	CrossmatchCatalogs []string `json:"crossmatch_catalogs"`
}

// RenameMap returns the column renames as a lookup map.
func (c Catalog) RenameMap() map[string]string {
	m := make(map[string]string, len(c.RenameIn))
	for i, in := range c.RenameIn {
		m[in] = c.RenameOut[i]
	}
	return m
}

var (
	loadOnce sync.Once
	table    map[string]Catalog
	loadErr  error
)

func load() (map[string]Catalog, error) {
	loadOnce.Do(func() {
		var parsed map[string]Catalog
		if err := json.Unmarshal(rawConfig, &parsed); err != nil {
			loadErr = fmt.Errorf("parse catalog config: %w", err)
			return
		}
		if err := validate(parsed); err != nil {
			loadErr = err
			return
		}
		table = parsed
	})
	return table, loadErr
}

func validate(parsed map[string]Catalog) error {
	for name, c := range parsed {
		if c.Catalog == "" {
			return fmt.Errorf("catalog %q: missing remote catalog id", name)
		}
		if len(c.Columns) == 0 {
			return fmt.Errorf("catalog %q: no columns declared", name)
		}
		if len(c.RenameIn) != len(c.RenameOut) {
			return fmt.Errorf("catalog %q: rename_in and rename_out lengths differ", name)
		}
		for _, col := range c.RenameIn {
			if !slices.Contains(c.Columns, col) {
				return fmt.Errorf("catalog %q: rename source %q is not a declared column", name, col)
			}
		}
		if c.DefaultMag != "" && !slices.Contains(c.Columns, c.DefaultMag) {
			return fmt.Errorf("catalog %q: default_mag %q is not a declared column", name, c.DefaultMag)
		}
		for _, other := range c.CrossmatchCatalogs {
			if _, ok := parsed[other]; !ok {
				return fmt.Errorf("catalog %q: crossmatch target %q is not in the table", name, other)
			}
		}
	}
	return nil
}

// Lookup returns the configuration for a catalog by name (case-insensitive).
func Lookup(name string) (Catalog, error) {
	t, err := load()
	if err != nil {
		return Catalog{}, err
	}
	c, ok := t[strings.ToLower(name)]
	if !ok {
		return Catalog{}, fmt.Errorf("%w: %s", ErrUnknownCatalog, name)
	}
	return c, nil
}

// Names lists the supported catalog names in sorted order.
func Names() ([]string, error) {
	t, err := load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
