package sqlite

import (
	"context"

	"fragranceetl/internal/storage"
)

// Kind is the storage kind this package registers.
const Kind = "sqlite"

// newRepository is replaced in tests to avoid opening a real database.
var newRepository = NewRepository

func open(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
	if err != nil {
		return nil, err
	}
	return storage.WithClose(r, closeFn), nil
}

func init() {
	storage.Register(Kind, open)
	storage.RegisterDDL(Kind, EnsureTable)
}
