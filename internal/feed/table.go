// Package feed turns tokenized CSV tables into datasets with resolved
// columns, and selects rows from them by date.
package feed

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/plant-dashboard/internal/transform"
)

// Row is one data row. It may be shorter than the header.
type Row []string

// Dataset is an immutable parsed snapshot of one feed. A refresh builds a new
// Dataset rather than modifying an existing one.
type Dataset struct {
	Feed       string
	Header     []string
	Rows       []Row
	Columns    HeaderMap
	Schema     Schema
	FetchedAt  time.Time
	Generation uint64
}

// NewDataset builds a Dataset from a tokenized table whose first row is the
// header. Tables without at least one data row are rejected.
func NewDataset(name string, table [][]string, schema Schema, fetchedAt time.Time) (*Dataset, error) {
	if len(table) < 2 {
		return nil, eris.Wrapf(ErrInsufficientRows, "feed %s: got %d rows", name, len(table))
	}

	header := make([]string, len(table[0]))
	for i, h := range table[0] {
		header[i] = CleanHeader(h)
	}

	rows := make([]Row, len(table)-1)
	for i, r := range table[1:] {
		rows[i] = Row(r)
	}

	return &Dataset{
		Feed:      name,
		Header:    header,
		Rows:      rows,
		Columns:   Resolve(header, schema),
		Schema:    schema,
		FetchedAt: fetchedAt,
	}, nil
}

// Len is the number of data rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// Record binds row to the dataset's column map.
func (d *Dataset) Record(row Row) Record {
	return Record{row: row, cols: d.Columns}
}

// DateOf returns the cleaned date cell of row, or "" when the dataset has no
// date column or the row is too short.
func (d *Dataset) DateOf(row Row) string {
	v, ok := d.Record(row).Lookup(d.Schema.DateField)
	if !ok {
		return ""
	}
	return transform.CleanDate(v)
}

// Record is a read-only view of a row by semantic field key.
type Record struct {
	row  Row
	cols HeaderMap
}

// Lookup returns the trimmed cell for key. ok is false when the field is
// absent or the row has no cell at its column.
func (r Record) Lookup(key string) (string, bool) {
	i, ok := r.cols.Index(key)
	if !ok || i >= len(r.row) {
		return "", false
	}
	return strings.TrimSpace(r.row[i]), true
}

// Get returns the trimmed cell for key, or def when the cell does not exist.
// An existing empty cell yields "".
func (r Record) Get(key, def string) string {
	if v, ok := r.Lookup(key); ok {
		return v
	}
	return def
}
