package ddl

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, REAL)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Unique: whether the column carries a UNIQUE constraint
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Unique     bool
	Default    string
}

// TableDef holds the table name (FQN, possibly "schema.table") and an ordered
// list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Dialect captures the SQL differences the CREATE TABLE renderer cares about.
type Dialect struct {
	// Quote quotes one identifier segment. Nil leaves identifiers as-is.
	Quote func(id string) string

	// IfNotExists renders CREATE TABLE IF NOT EXISTS.
	IfNotExists bool

	// Guard, when set, wraps the rendered statement for dialects that lack
	// IF NOT EXISTS. It receives the quoted table name.
	Guard func(quotedFQN, stmt string) string
}

// Generic emits identifiers verbatim and no existence guard.
var Generic = Dialect{}
