package importer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"fragranceetl/internal/schema"
	"fragranceetl/internal/storage/sqlfile"
	_ "fragranceetl/internal/storage/sqlite"
)

func ptr[T any](v T) *T { return &v }

/*
TestRun_WithSQLite generates three batch files, the second of which repeats
an external id already loaded by the first, and imports them into a fresh
SQLite database with table creation enabled.
*/
func TestRun_WithSQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := t.TempDir()
	w, err := sqlfile.NewWriter(filepath.Join(dir, "batches"), "fragrances", "fragrances_")
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	cols := schema.SQLColumnList()
	row := func(name, brand, id string) []any {
		return schema.Fragrance{
			Name:       ptr(name),
			Brand:      ptr(brand),
			Rating:     ptr(4.25),
			Votes:      ptr(int64(1200)),
			ExternalID: ptr(id),
		}.Values()
	}
	batches := [][][]any{
		{row("Sauvage", "Dior", "Dior-Sauvage-31861"), row("L'Eau d'Issey", "Issey", "Issey-720")},
		{row("Sauvage", "Dior", "Dior-Sauvage-31861")},
		{row("Aventus", "Creed", "Creed-Aventus-9828")},
	}
	for _, b := range batches {
		if _, err := w.Copy(ctx, cols, b); err != nil {
			t.Fatalf("Copy: %v", err)
		}
	}

	files, err := ListBatches(filepath.Join(dir, "batches"), "")
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}

	db, err := OpenDB(ctx, "sqlite", filepath.Join(dir, "fragrances.db"), "fragrances", true)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()

	logs := &logSink{}
	rep, err := Run(ctx, files, db, Config{Logf: logs.Logf})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.SuccessCount != 2 || rep.ErrorCount != 1 {
		t.Fatalf("counts: success=%d error=%d (%+v)", rep.SuccessCount, rep.ErrorCount, rep.Failures)
	}
	if f := rep.Failures[0]; f.File != "fragrances_0002.sql" || !strings.Contains(f.Reason, "UNIQUE") {
		t.Fatalf("failure = %+v", f)
	}
	if rep.VerifyErr != nil || !strings.Contains(rep.Verification, "│ 3     │") {
		t.Fatalf("verification = %q, %v", rep.Verification, rep.VerifyErr)
	}
}

func TestOpenDB_UnknownKind(t *testing.T) {
	t.Parallel()

	if _, err := OpenDB(context.Background(), "oracle", "x", "fragrances", false); err == nil {
		t.Fatal("expected error for unregistered kind")
	}
}

func TestDB_ExecuteMissingFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := OpenDB(ctx, "sqlite", filepath.Join(t.TempDir(), "f.db"), "fragrances", false)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()

	if err := db.Prepare(ctx); err != nil {
		t.Fatalf("Prepare without CreateTable: %v", err)
	}
	if err := db.Execute(ctx, filepath.Join(t.TempDir(), "missing.sql")); err == nil || !strings.Contains(err.Error(), "read batch") {
		t.Fatalf("Execute(missing) = %v", err)
	}
}
