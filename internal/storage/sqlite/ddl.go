package sqlite

import (
	"context"
	"strings"

	"fragranceetl/internal/ddl"
	"fragranceetl/internal/schema"
	"fragranceetl/internal/storage"
)

// Dialect renders ANSI double-quoted identifiers with IF NOT EXISTS.
var Dialect = ddl.Dialect{Quote: ddl.DoubleQuote, IfNotExists: true}

// MapType maps a logical column kind to a SQLite type affinity.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "INTEGER"
	case "float", "double", "real":
		return "REAL"
	default:
		return "TEXT"
	}
}

// CreateTableSQL renders the fragrance table for SQLite.
func CreateTableSQL(table string) (string, error) {
	return ddl.BuildCreateTableSQL(schema.TableDef(table, MapType), Dialect)
}

// EnsureTable creates the fragrance table through repo when missing.
func EnsureTable(ctx context.Context, repo storage.Repository, table string) error {
	stmt, err := CreateTableSQL(table)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, stmt)
}
