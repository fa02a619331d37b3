package csv

import (
	"encoding/csv"
	"fmt"
	"io"
)

// TableWriter writes a header followed by fixed-width rows. Null cells are
// written as empty strings by the caller.
type TableWriter struct {
	w       *csv.Writer
	columns []string
	rows    int
}

// NewTableWriter writes the header line for columns to w.
func NewTableWriter(w io.Writer, columns []string) (*TableWriter, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table writer: no columns")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &TableWriter{w: cw, columns: columns}, nil
}

// Write appends one row. The row width must match the header.
func (t *TableWriter) Write(row []string) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("row %d: got %d cells, want %d", t.rows+1, len(row), len(t.columns))
	}
	if err := t.w.Write(row); err != nil {
		return fmt.Errorf("write row %d: %w", t.rows+1, err)
	}
	t.rows++
	return nil
}

// Flush writes buffered data to the underlying writer.
func (t *TableWriter) Flush() error {
	t.w.Flush()
	return t.w.Error()
}

// Rows returns the number of data rows written so far.
func (t *TableWriter) Rows() int { return t.rows }

// Columns returns the header.
func (t *TableWriter) Columns() []string { return t.columns }
