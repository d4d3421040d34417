// Package ingest reads the uploaded tabular carriers (CSV) into a generic
// in-memory table the normalizer consumes. The core mandates no file format;
// CSV is what the upload UI ships today.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Table is a rectangular dataset with named columns.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable builds a table from a header and data rows.
func NewTable(columns []string, rows [][]string) *Table {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Table{columns: columns, index: idx, rows: rows}
}

// ReadCSV parses a CSV stream whose first record is the header row.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv: header row missing")
	}
	header := make([]string, len(records[0]))
	for i, c := range records[0] {
		header[i] = strings.TrimSpace(c)
	}
	return NewTable(header, records[1:]), nil
}

// Columns returns the header in file order.
func (t *Table) Columns() []string { return t.columns }

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether the named column exists. Lookup is exact and
// case-sensitive, matching the source tables.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// MissingColumns returns which of the given columns the table lacks.
func (t *Table) MissingColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// Cell returns the value at (row, column). An unknown column yields "".
func (t *Table) Cell(row int, column string) string {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) || i >= len(t.rows[row]) {
		return ""
	}
	return t.rows[row][i]
}

// ColumnValues returns all values of one column, in row order.
func (t *Table) ColumnValues(column string) []string {
	vals := make([]string, 0, len(t.rows))
	for i := range t.rows {
		vals = append(vals, t.Cell(i, column))
	}
	return vals
}
