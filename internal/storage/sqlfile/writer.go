// Package sqlfile renders normalized fragrance rows into numbered SQL batch
// files. Each file holds one multi-row INSERT and is applied by the import
// stage as an independent unit.
package sqlfile

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Writer implements storage.CopyFn by writing every batch it receives to the
// next numbered file in Dir.
type Writer struct {
	dir    string
	table  string
	prefix string

	seq   int
	files []string
}

// NewWriter creates dir when missing and returns a Writer whose files are
// named <prefix><seq>.sql with seq zero-padded to four digits.
func NewWriter(dir, table, prefix string) (*Writer, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("sqlfile: table must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sqlfile: mkdir %s: %w", dir, err)
	}
	return &Writer{dir: dir, table: table, prefix: prefix}, nil
}

// Copy renders rows as one INSERT statement and writes it to a new file. It
// matches storage.CopyFn.
func (w *Writer) Copy(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, err := InsertStatement(w.table, columns, rows)
	if err != nil {
		return 0, err
	}

	w.seq++
	path := filepath.Join(w.dir, fmt.Sprintf("%s%04d.sql", w.prefix, w.seq))
	if err := os.WriteFile(path, []byte(stmt), 0o644); err != nil {
		return 0, fmt.Errorf("sqlfile: write %s: %w", path, err)
	}
	w.files = append(w.files, path)
	return int64(len(rows)), nil
}

// Files returns the paths written so far, in write order.
func (w *Writer) Files() []string { return w.files }

// RemoveStale deletes <prefix>*.sql files left in the directory by an earlier
// run and returns how many were removed. Without it a shorter rerun would
// leave old tail batches behind for the importer to pick up.
func (w *Writer) RemoveStale() (int, error) {
	matches, err := filepath.Glob(filepath.Join(w.dir, w.prefix+"*.sql"))
	if err != nil {
		return 0, fmt.Errorf("sqlfile: glob: %w", err)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return 0, fmt.Errorf("sqlfile: remove %s: %w", m, err)
		}
	}
	return len(matches), nil
}

// InsertStatement renders
//
//	INSERT INTO <table> (<columns>) VALUES
//	(<v>, ...),
//	(<v>, ...);
//
// Every row must be as wide as columns.
func InsertStatement(table string, columns []string, rows [][]any) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("sqlfile: columns must not be empty")
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES\n")
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", fmt.Errorf("sqlfile: row %d has %d values, want %d", i, len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(Literal(v))
		}
		b.WriteByte(')')
	}
	b.WriteString(";\n")
	return b.String(), nil
}

// Literal renders one value as a SQL literal. nil, empty strings and
// non-finite floats become NULL; strings are single-quoted with embedded
// quotes doubled.
func Literal(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		if t == "" {
			return "NULL"
		}
		return "'" + strings.ReplaceAll(t, "'", "''") + "'"
	case *string:
		if t == nil {
			return "NULL"
		}
		return Literal(*t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case *int64:
		if t == nil {
			return "NULL"
		}
		return strconv.FormatInt(*t, 10)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "NULL"
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case *float64:
		if t == nil {
			return "NULL"
		}
		return Literal(*t)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return Literal(fmt.Sprint(t))
	}
}
