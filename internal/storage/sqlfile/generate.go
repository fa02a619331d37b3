package sqlfile

import (
	"context"
	"fmt"
	"io"
	"log"

	"golang.org/x/sync/errgroup"

	"fragranceetl/internal/config"
	"fragranceetl/internal/parser/csv"
	"fragranceetl/internal/schema"
	"fragranceetl/internal/storage"
	"fragranceetl/internal/transformer/builtin"
	"fragranceetl/pkg/records"
)

// Options configures Generate.
type Options struct {
	Dir       string
	Table     string
	Prefix    string
	BatchSize int

	// Require lists canonical fields that must be non-null; rows missing one
	// are dropped.
	Require []string

	// DedupeKeys lists canonical fields forming the row key; rows whose key
	// was already emitted are dropped.
	DedupeKeys []string

	// ChannelBuffer sizes the channels between stages.
	ChannelBuffer int
}

// Summary reports one Generate run.
type Summary struct {
	Rows             int64
	Files            []string
	DroppedRequired  int
	DroppedDuplicate int
	ParseErrors      int
}

// ReaderOptions returns the CSV options that read a normalized table back:
// canonical column names map to themselves and cells are taken verbatim.
func ReaderOptions() config.Options {
	hm := make(map[string]any, len(schema.Columns))
	for _, c := range schema.Columns {
		hm[c] = c
	}
	return config.Options{
		"header_map":  hm,
		"unicode_nfc": false,
		"lazy_quotes": true,
	}
}

// Generate reads a normalized table from src and writes batch files per opt.
// src is closed before returning.
func Generate(ctx context.Context, src io.ReadCloser, opt Options) (Summary, error) {
	var sum Summary

	if opt.BatchSize <= 0 {
		opt.BatchSize = config.DefaultBatchSize
	}
	if opt.Table == "" {
		opt.Table = config.DefaultTable
	}
	w, err := NewWriter(opt.Dir, opt.Table, opt.Prefix)
	if err != nil {
		src.Close()
		return sum, err
	}
	if n, err := w.RemoveStale(); err != nil {
		src.Close()
		return sum, err
	} else if n > 0 {
		log.Printf("generate: removed stale batch files=%d dir=%s", n, opt.Dir)
	}

	recCh := make(chan records.Record, opt.ChannelBuffer)
	rowCh := make(chan []any, opt.ChannelBuffer)
	req := builtin.Require{Fields: opt.Require}
	var dd *builtin.DeDup
	if len(opt.DedupeKeys) > 0 {
		dd = builtin.NewDeDup(opt.DedupeKeys)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(recCh)
		_, err := csv.StreamRecords(gctx, src, ReaderOptions(), recCh, func(line int, err error) {
			sum.ParseErrors++
			log.Printf("generate: skip line=%d err=%v", line, err)
		})
		if err != nil {
			return fmt.Errorf("read normalized table: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		defer close(rowCh)
		for rec := range recCh {
			if !req.Keep(rec) {
				sum.DroppedRequired++
				continue
			}
			if dd != nil && dd.Duplicate(rec) {
				sum.DroppedDuplicate++
				continue
			}
			select {
			case rowCh <- Row(rec):
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		n, err := storage.LoadBatches(gctx, schema.SQLColumnList(), rowCh, opt.BatchSize, w.Copy)
		sum.Rows = n
		return err
	})

	err = g.Wait()
	sum.Files = w.Files()
	if err != nil {
		return sum, err
	}
	log.Printf("generate: rows=%d files=%d dropped_required=%d dropped_duplicate=%d parse_errors=%d",
		sum.Rows, len(sum.Files), sum.DroppedRequired, sum.DroppedDuplicate, sum.ParseErrors)
	return sum, nil
}

// Row converts a normalized record into values in schema.Columns order.
// Numeric columns that do not parse become nil.
func Row(rec records.Record) []any {
	row := make([]any, len(schema.Columns))
	for i, c := range schema.Columns {
		v := rec.Get(c)
		switch schema.KindOf(c) {
		case schema.KindInt:
			if n := builtin.CoerceInt(v); n != nil {
				row[i] = *n
			}
		case schema.KindFloat:
			if f := builtin.CoerceFloat(v); f != nil {
				row[i] = *f
			}
		default:
			row[i] = v
		}
	}
	return row
}
