// Package mssql implements a Microsoft SQL Server storage.Repository on
// database/sql with the go-mssqldb driver. Each batch file runs in its own
// transaction.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"fragranceetl/internal/storage"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN   string
	Table string
}

// appName tags the session in sys.dm_exec_sessions unless the DSN sets one.
const appName = "fragranceetl-import"

// Repository applies batch files to one SQL Server database.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository parses cfg.DSN, opens a connector on it and pings the
// server once.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dc, err := msdsn.Parse(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	if dc.AppName == "" {
		dc.AppName = appName
	}
	db := sql.OpenDB(mssql.NewConnectorConfig(dc))
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mssql: connect %s: %w", dc.Host, serverError(err))
	}
	return &Repository{db: db, cfg: cfg}, func() { _ = db.Close() }, nil
}

// Exec sends one T-SQL batch outside a transaction (the guarded CREATE
// TABLE). Blank input is a no-op.
func (r *Repository) Exec(ctx context.Context, batch string) error {
	if strings.TrimSpace(batch) == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, batch)
	return wrap("exec", err)
}

// ExecScript sends a whole batch file as one T-SQL batch in a transaction.
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
	return fmt.Errorf("mssql: %s: %w", op, serverError(err))
}

// serverError prefixes SQL Server errors with their number and line.
func serverError(err error) error {
	var me mssql.Error
	if errors.As(err, &me) {
		return fmt.Errorf("msg %d, line %d: %w", me.Number, me.LineNo, err)
	}
	return err
}
