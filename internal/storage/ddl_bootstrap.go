package storage

import (
	"context"
	"fmt"
	"sync"
)

// DDLBootstrapper creates the fragrance target table named table through
// repo when it does not exist yet. Backends register one per kind in init(),
// rendering the table with their own dialect and type mapping.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable invokes the DDLBootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for kind=%q", kind)
	}
	if err := fn(ctx, repo, table); err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	return nil
}
