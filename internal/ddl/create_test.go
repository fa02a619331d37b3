package ddl

import (
	"strings"
	"testing"
)

// TestBuildCreateTableSQL verifies rendering and input validation with
// table-driven subtests.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	quoted := Dialect{Quote: DoubleQuote, IfNotExists: true}
	guarded := Dialect{
		Quote: BracketQuote,
		Guard: func(fqn, stmt string) string {
			return "IF OBJECT_ID(N'" + fqn + "', N'U') IS NULL\nBEGIN\n" + stmt + "\nEND;"
		},
	}

	tests := []struct {
		name        string
		def         TableDef
		dialect     Dialect
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN returns error",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}},
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns returns error",
			def:         TableDef{FQN: "t"},
			errContains: "at least one column is required",
		},
		{
			name:        "column with empty name returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{SQLType: "INT"}}},
			errContains: "column with empty name",
		},
		{
			name:        "column with empty type returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			errContains: "missing SQLType",
		},
		{
			name:    "generic nullable and not null",
			def:     TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id", SQLType: "INT"}, {Name: "n", SQLType: "TEXT", Nullable: true}}},
			wantSQL: "CREATE TABLE t (\n  id INT NOT NULL,\n  n TEXT\n);",
		},
		{
			name: "default unique and primary key",
			def: TableDef{FQN: "t", Columns: []ColumnDef{
				{Name: "id", SQLType: "INT", PrimaryKey: true},
				{Name: "ext", SQLType: "TEXT", Nullable: true, Unique: true},
				{Name: "created_at", SQLType: "TIMESTAMP", Default: "CURRENT_TIMESTAMP"},
			}},
			wantSQL: "CREATE TABLE t (\n  id INT NOT NULL,\n  ext TEXT UNIQUE,\n  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,\n  PRIMARY KEY (id)\n);",
		},
		{
			name:    "quoted if not exists with schema",
			def:     TableDef{FQN: "main.fragrances", Columns: []ColumnDef{{Name: "name", SQLType: "TEXT"}}},
			dialect: quoted,
			wantSQL: "CREATE TABLE IF NOT EXISTS \"main\".\"fragrances\" (\n  \"name\" TEXT NOT NULL\n);",
		},
		{
			name:    "guarded dialect",
			def:     TableDef{FQN: "dbo.fragrances", Columns: []ColumnDef{{Name: "name", SQLType: "NVARCHAR(MAX)"}}},
			dialect: guarded,
			wantSQL: "IF OBJECT_ID(N'[dbo].[fragrances]', N'U') IS NULL\nBEGIN\nCREATE TABLE [dbo].[fragrances] (\n  [name] NVARCHAR(MAX) NOT NULL\n);\nEND;",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildCreateTableSQL(tc.def, tc.dialect)
			if tc.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tc.errContains) {
					t.Fatalf("err = %v, want containing %q", err, tc.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.wantSQL {
				t.Fatalf("SQL mismatch\n got: %q\nwant: %q", got, tc.wantSQL)
			}
		})
	}
}

func TestQuoting(t *testing.T) {
	if got := DoubleQuote(`we"ird`); got != `"we""ird"` {
		t.Fatalf("DoubleQuote = %s", got)
	}
	if got := BracketQuote("we]ird"); got != "[we]]ird]" {
		t.Fatalf("BracketQuote = %s", got)
	}
	if got := QuoteFQN(" a . .b ", DoubleQuote); got != `"a"."b"` {
		t.Fatalf("QuoteFQN = %s", got)
	}
}
