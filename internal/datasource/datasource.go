// Package datasource defines where the pipeline's tables come from and go to.
package datasource

import (
	"context"
	"io"
)

// Source opens a table for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Sink opens a table for writing. Commit publishes what was written; Close
// without Commit discards it.
type Sink interface {
	Create(ctx context.Context) (Output, error)
}

// Output is an open Sink.
type Output interface {
	io.Writer
	Commit() error
	Close() error
}
