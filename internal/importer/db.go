package importer

import (
	"context"
	"fmt"
	"log"
	"os"

	"fragranceetl/internal/storage"
)

// DB executes batch files directly through a storage.Repository. Each file
// runs in its own transaction.
type DB struct {
	Repo storage.Repository
	Kind string

	// Table is created before the first file when CreateTable is set.
	Table       string
	CreateTable bool
}

// OpenDB opens the repository registered for kind.
func OpenDB(ctx context.Context, kind, dsn, table string, createTable bool) (*DB, error) {
	repo, err := storage.New(ctx, storage.Config{Kind: kind, DSN: dsn, Table: table})
	if err != nil {
		return nil, err
	}
	return &DB{Repo: repo, Kind: kind, Table: table, CreateTable: createTable}, nil
}

// Prepare creates the target table when CreateTable is set.
func (d *DB) Prepare(ctx context.Context) error {
	if !d.CreateTable {
		return nil
	}
	if err := storage.EnsureTable(ctx, d.Kind, d.Repo, d.Table); err != nil {
		return err
	}
	log.Printf("import: ensured table kind=%s table=%s", d.Kind, d.Table)
	return nil
}

// Execute runs the file's statements as one script.
func (d *DB) Execute(ctx context.Context, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read batch: %w", err)
	}
	return d.Repo.ExecScript(ctx, string(b))
}

// Verify renders the query result as a text table.
func (d *DB) Verify(ctx context.Context, query string) (string, error) {
	return d.Repo.QueryText(ctx, query)
}

// Close releases the repository.
func (d *DB) Close() {
	if d.Repo != nil {
		d.Repo.Close()
	}
}
