package mast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID accepts both JSON strings and numbers. MAST services are inconsistent
// about the type of obsid across endpoints.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("obsid: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Seq accepts numbers, numeric strings, and null for sequence_number
// (sector / quarter / campaign, depending on the mission).
type Seq int

func (s *Seq) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		if str == "" {
			*s = 0
			return nil
		}
		n, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("sequence_number: %w", err)
		}
		*s = Seq(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("sequence_number: %w", err)
	}
	*s = Seq(int(f))
	return nil
}

// Observation is one row of a CAOM observation query. Field names follow
// the MAST CAOM column names so the JSON payload maps directly.
type Observation struct {
	ObsID          ID      `json:"obsid"`
	ObsName        string  `json:"obs_id"`
	TargetName     string  `json:"target_name"`
	Collection     string  `json:"obs_collection"`
	Project        string  `json:"project"`
	Provenance     string  `json:"provenance_name"`
	SequenceNumber Seq     `json:"sequence_number"`
	RA             float64 `json:"s_ra"`
	Dec            float64 `json:"s_dec"`
	ExpTime        float64 `json:"t_exptime"`
	TMin           float64 `json:"t_min"`
	DataproductTyp string  `json:"dataproduct_type"`
	Distance       float64 `json:"distance"`
}

// Product is one row of a product list for an observation.
type Product struct {
	ObsID       ID     `json:"obsID"`
	Collection  string `json:"obs_collection"`
	Type        string `json:"dataproduct_type"`
	Description string `json:"description"`
	ProductType string `json:"productType"`
	DataURI     string `json:"dataURI"`
	Filename    string `json:"productFilename"`
	Project     string `json:"project"`
	Size        int64  `json:"size"`
}

// Query restricts a CAOM position search.
type Query struct {
	RA           float64
	Dec          float64
	RadiusArcsec float64

	// Optional CAOM column filters; empty slices are omitted.
	Collections     []string
	Provenance      []string
	SequenceNumbers []int
}
