package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// CopyFn receives one batch of rows aligned to columns and returns the
// number of rows it accepted. The batch writer implements it by rendering a
// SQL file; a backend could implement it with its bulk-insert primitive.
// rows is reused after CopyFn returns and must not be retained.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches cuts the rows arriving on in into batches of batchSize, in
// arrival order, and hands each to copyFn. The final batch holds the
// remainder. It returns the number of rows copyFn accepted.
//
// A copyFn error stops the loader and is returned wrapped with the batch
// number. On cancellation the pending partial batch is discarded.
func LoadBatches(ctx context.Context, columns []string, in <-chan []any, batchSize int, copyFn CopyFn) (int64, error) {
	switch {
	case batchSize <= 0:
		return 0, fmt.Errorf("batch size must be positive, got %d", batchSize)
	case copyFn == nil:
		return 0, errors.New("nil CopyFn")
	}

	var (
		total   int64
		seq     int
		pending = make([][]any, 0, batchSize)
		started = time.Now()
	)
	emit := func() error {
		seq++
		n, err := copyFn(ctx, columns, pending)
		total += n
		pending = pending[:0]
		if err != nil {
			return fmt.Errorf("batch %d: %w", seq, err)
		}
		log.Printf("loader: batch=%d rows=%d total=%d elapsed=%s",
			seq, n, total, time.Since(started).Truncate(time.Millisecond))
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case row, ok := <-in:
			if !ok {
				if len(pending) > 0 {
					if err := emit(); err != nil {
						return total, err
					}
				}
				log.Printf("loader: done batches=%d rows=%d", seq, total)
				return total, nil
			}
			pending = append(pending, row)
			if len(pending) == batchSize {
				if err := emit(); err != nil {
					return total, err
				}
			}
		}
	}
}
