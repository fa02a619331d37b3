// Package ddl defines a small model for SQL DDL and renders CREATE TABLE
// statements from it for a given Dialect. ColumnDef.Default is emitted as raw
// SQL; the caller is responsible for its safety.
package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef.
//
// A column is rendered as:
//
//	<Name> <SQLType> [NOT NULL] [DEFAULT <Default>] [UNIQUE]
//
// Columns with PrimaryKey == true are collected into a trailing
// PRIMARY KEY (<col1>, <col2>, ...) clause.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}
	quote := d.Quote
	if quote == nil {
		quote = func(id string) string { return id }
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		if c.Unique {
			sb.WriteString(" UNIQUE")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	qfqn := QuoteFQN(fqn, quote)
	head := "CREATE TABLE "
	if d.IfNotExists && d.Guard == nil {
		head = "CREATE TABLE IF NOT EXISTS "
	}
	stmt := fmt.Sprintf("%s%s (\n  %s\n);", head, qfqn, strings.Join(cols, ",\n  "))
	if d.Guard != nil {
		stmt = d.Guard(qfqn, stmt)
	}
	return stmt, nil
}

// QuoteFQN quotes each dot-separated segment of fqn, dropping empty segments.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// DoubleQuote quotes an identifier ANSI-style: name -> "name".
func DoubleQuote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// BracketQuote quotes an identifier SQL Server-style: name -> [name].
func BracketQuote(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
