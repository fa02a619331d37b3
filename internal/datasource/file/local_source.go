// Package file implements the local filesystem source and sink.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fragranceetl/internal/datasource"
)

// Local opens and creates one path on the local disk.
type Local struct{ path string }

var (
	_ datasource.Source = (*Local)(nil)
	_ datasource.Sink   = (*Local)(nil)
)

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Open opens the path for reading. A canceled ctx is reported before the
// filesystem is touched; errors keep os.ErrNotExist visible to errors.Is.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Create starts writing a replacement for the path. Bytes go to a temporary
// file in the same directory, which Commit renames over the path, so readers
// never observe a half-written table.
func (l *Local) Create(ctx context.Context) (datasource.Output, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", l.path, err)
	}
	return &atomicFile{f: f, dst: l.path}, nil
}

type atomicFile struct {
	f         *os.File
	dst       string
	committed bool
	closed    bool
}

func (a *atomicFile) Write(p []byte) (int, error) { return a.f.Write(p) }

func (a *atomicFile) Commit() error {
	if a.closed {
		return fmt.Errorf("commit %s: already closed", a.dst)
	}
	a.closed = true
	if err := a.f.Sync(); err != nil {
		a.f.Close()
		os.Remove(a.f.Name())
		return fmt.Errorf("sync %s: %w", a.dst, err)
	}
	if err := a.f.Close(); err != nil {
		os.Remove(a.f.Name())
		return fmt.Errorf("close %s: %w", a.dst, err)
	}
	if err := os.Rename(a.f.Name(), a.dst); err != nil {
		os.Remove(a.f.Name())
		return fmt.Errorf("rename %s: %w", a.dst, err)
	}
	a.committed = true
	return nil
}

// Close discards uncommitted output. It is safe to call after Commit.
func (a *atomicFile) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.f.Close()
	return os.Remove(a.f.Name())
}
