package table

import (
	"encoding/json"
	"maps"
)

// RowType tags a Row as a section header or a data row
type RowType string

const (
	RowSection RowType = "section"
	RowData    RowType = "data"
)

// Row is one emitted table row. Section rows carry a Title and blank fields;
// data rows carry the raw column to text map
type Row struct {
	Type   RowType
	Title  string
	Fields map[string]string
}

// Clone returns a deep copy
func (r Row) Clone() Row {
	r.Fields = maps.Clone(r.Fields)
	return r
}

// MarshalJSON flattens the fields next to row_type and section_title, the shape
// the dashboard reads
func (r Row) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(r.Fields)+2)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["row_type"] = string(r.Type)
	if r.Type == RowSection {
		out["section_title"] = r.Title
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON
func (r *Row) UnmarshalJSON(data []byte) error {
	var in map[string]string
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Type = RowType(in["row_type"])
	r.Title = in["section_title"]
	delete(in, "row_type")
	delete(in, "section_title")
	r.Fields = in
	return nil
}
