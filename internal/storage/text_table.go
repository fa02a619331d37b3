package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// FormatTable renders a header and rows as an aligned, boxed text table:
//
//	┌───────┐
//	│ total │
//	├───────┤
//	│ 24063 │
//	└───────┘
func FormatTable(columns []string, rows [][]string) string {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len([]rune(c))
	}
	for _, r := range rows {
		for i := 0; i < len(r) && i < len(widths); i++ {
			if n := len([]rune(r[i])); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	rule := func(left, mid, right string) {
		b.WriteString(left)
		for i, w := range widths {
			if i > 0 {
				b.WriteString(mid)
			}
			b.WriteString(strings.Repeat("─", w+2))
		}
		b.WriteString(right)
		b.WriteByte('\n')
	}
	line := func(cells []string) {
		b.WriteString("│")
		for i, w := range widths {
			var v string
			if i < len(cells) {
				v = cells[i]
			}
			b.WriteString(" ")
			b.WriteString(v)
			b.WriteString(strings.Repeat(" ", w-len([]rune(v))))
			b.WriteString(" │")
		}
		b.WriteByte('\n')
	}

	rule("┌", "┬", "┐")
	line(columns)
	rule("├", "┼", "┤")
	for _, r := range rows {
		line(r)
	}
	rule("└", "┴", "┘")
	return b.String()
}

// FormatValue renders one scanned database value for FormatTable.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

// RenderRows drains a database/sql result set into FormatTable output and
// closes rows.
func RenderRows(rows *sql.Rows) (string, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("columns: %w", err)
	}
	var out [][]string
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("scan: %w", err)
		}
		line := make([]string, len(cols))
		for i, v := range vals {
			line[i] = FormatValue(v)
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("rows: %w", err)
	}
	return FormatTable(cols, out), nil
}
