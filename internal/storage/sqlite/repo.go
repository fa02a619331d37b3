// Package sqlite implements a SQLite-backed storage.Repository on
// database/sql with the pure-Go modernc.org/sqlite driver. Each batch file
// runs inside its own transaction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fragranceetl/internal/storage"

	_ "modernc.org/sqlite"
)

// Config holds SQLite repository configuration. DSN is a file path or a
// "file:" URI such as "file:fragrances.db?_pragma=busy_timeout(5000)".
type Config struct {
	DSN   string
	Table string
}

// connectPragmas run once after the database opens. The import is the only
// writer, so waiting on a lock held by a reader beats failing the file.
var connectPragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Repository applies batch files to one SQLite database.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens cfg.DSN, checks it is reachable within five seconds
// and returns the Repository with its cleanup func.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, nil, errors.New("sqlite: empty DSN")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	// A single connection keeps the pragmas and an in-memory database alive
	// for the repository's lifetime.
	db.SetMaxOpenConns(1)

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, p := range connectPragmas {
		if _, err := db.ExecContext(connectCtx, p); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}
	return &Repository{db: db, cfg: cfg}, func() { _ = db.Close() }, nil
}

// Exec runs one statement outside a transaction; blank input is a no-op.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, stmt)
	return wrap("exec", err)
}

// ExecScript applies a whole batch file atomically: a failing INSERT rolls
// back every row of the file.
func (r *Repository) ExecScript(ctx context.Context, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin", err)
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return wrap("batch", err)
	}
	return wrap("commit", tx.Commit())
}

// QueryText runs query and renders the result set as a text table.
func (r *Repository) QueryText(ctx context.Context, query string) (string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return "", wrap("query", err)
	}
	out, err := storage.RenderRows(rows)
	return out, wrap("query", err)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("sqlite: %s: %w", op, err)
}
