// Package storage contains storage-agnostic contracts and utilities shared by
// the database backends (sqlite, postgres, mssql) and the batch file writer.
//
// Backends register a Factory under their kind in init(); callers import
// fragranceetl/internal/storage/all for the side effect and then obtain a
// Repository through New without depending on any backend package.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository executes batch SQL against one database.
type Repository interface {
	// Exec runs a single statement outside an explicit transaction
	// (typically DDL).
	Exec(ctx context.Context, sql string) error

	// ExecScript runs the full contents of one batch file inside a single
	// transaction. Either every statement commits or none does.
	ExecScript(ctx context.Context, script string) error

	// QueryText runs a read query and renders its result set as a small
	// plain-text table, the way a database CLI would print it.
	QueryText(ctx context.Context, query string) (string, error)

	Close()
}

// Config is the backend-neutral connection description.
type Config struct {
	// Kind selects the backend ("sqlite", "postgres", "mssql").
	Kind string

	// DSN is passed to the backend driver unchanged.
	DSN string

	// Table is the target table; used by the DDL bootstrapper.
	Table string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the Factory for kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the Factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	repo, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", cfg.Kind, err)
	}
	return repo, nil
}

// ListKinds returns the registered kinds in sorted order.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Statements is the part of Repository a backend driver implements itself.
type Statements interface {
	Exec(ctx context.Context, sql string) error
	ExecScript(ctx context.Context, script string) error
	QueryText(ctx context.Context, query string) (string, error)
}

// WithClose completes s into a Repository whose Close runs closeFn once.
// Backend constructors return (repo, closeFn, err); registrations pass both
// through here.
func WithClose(s Statements, closeFn func()) Repository {
	return &withClose{Statements: s, closeFn: closeFn}
}

type withClose struct {
	Statements
	once    sync.Once
	closeFn func()
}

func (w *withClose) Close() {
	w.once.Do(func() {
		if w.closeFn != nil {
			w.closeFn()
		}
	})
}
