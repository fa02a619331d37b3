// Package importer executes a directory of SQL batch files against a target
// database, one file at a time, and reports per-file outcomes.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fragranceetl/internal/datasource/file"
)

var (
	// ErrNoBatches is returned when the batch directory holds no files.
	ErrNoBatches = errors.New("no batch files found")

	// ErrTimeout marks an execution that exceeded its per-file deadline.
	ErrTimeout = errors.New("timeout")
)

// Executor runs one batch file, and the final verification query, against
// the target database.
type Executor interface {
	Execute(ctx context.Context, path string) error
	Verify(ctx context.Context, query string) (string, error)
}

// Preparer is implemented by executors that need a setup step before the
// first file runs.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// ExitError is a non-zero exit of the external tool.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return s
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// ListBatches returns the files in dir matching pattern ("*.sql" when empty)
// in natural order. An empty result is ErrNoBatches.
func ListBatches(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.sql"
	}
	files, err := file.List(dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s matching %s", ErrNoBatches, dir, pattern)
	}
	return files, nil
}

// reason renders a failed execution for the report. Timeouts always read
// "timeout" so they can be told apart from tool errors.
func reason(err error) string {
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout.Error()
	}
	return strings.TrimSpace(err.Error())
}
