package oaiharvest

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Columns is the header row of every tabular export, in order.
var Columns = []string{
	"title",
	"creator",
	"subject",
	"date",
	"format",
	"identifier",
	"description",
	"relation",
	"file_name",
}

// MetadataRecord is one harvested Dublin Core record.
type MetadataRecord struct {
	// Title is the first dc:title, or empty.
	Title string

	// Creator is the first dc:creator, or empty.
	Creator string

	// Subjects are all dc:subject values in document order.
	Subjects []string

	// Date is the first dc:date, or empty.
	Date string

	// Formats are all dc:format values in document order.
	Formats []string

	// Identifiers are all dc:identifier values in document order.
	Identifiers []string

	// Descriptions are all dc:description values in document order.
	Descriptions []string

	// Relations are all dc:relation values in document order.
	Relations []string

	// FileName is the local name of the downloaded file, empty if none was fetched.
	FileName string
}

// HasFile reports whether a file was downloaded for the record.
func (r *MetadataRecord) HasFile() bool {
	return r.FileName != ""
}

// Row returns the record's values in Columns order. Multi-valued fields are
// encoded as JSON arrays.
func (r *MetadataRecord) Row() []string {
	return []string{
		r.Title,
		r.Creator,
		encodeList(r.Subjects),
		r.Date,
		encodeList(r.Formats),
		encodeList(r.Identifiers),
		encodeList(r.Descriptions),
		encodeList(r.Relations),
		r.FileName,
	}
}

func encodeList(vals []string) string {
	if vals == nil {
		vals = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// A []string always encodes.
	_ = enc.Encode(vals)
	return strings.TrimSuffix(buf.String(), "\n")
}
