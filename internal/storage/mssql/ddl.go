package mssql

import (
	"context"
	"fmt"
	"strings"

	"fragranceetl/internal/ddl"
	"fragranceetl/internal/schema"
	"fragranceetl/internal/storage"
)

// Dialect renders bracket-quoted identifiers. SQL Server has no
// CREATE TABLE IF NOT EXISTS, so the statement is guarded with OBJECT_ID.
var Dialect = ddl.Dialect{
	Quote: ddl.BracketQuote,
	Guard: func(fqn, stmt string) string {
		lit := strings.ReplaceAll(fqn, "'", "''")
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND;", lit, stmt)
	},
}

// MapType maps a logical column kind into a SQL Server column type. Unique
// key columns need a bounded type to be indexable.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double", "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case schema.KeyKind:
		return "NVARCHAR(450)"
	default:
		return "NVARCHAR(MAX)"
	}
}

// CreateTableSQL renders the fragrance table for SQL Server.
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
