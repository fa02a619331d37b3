package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"fragranceetl/internal/config"
	"fragranceetl/internal/datasource/file"
	"fragranceetl/internal/importer"
	"fragranceetl/internal/metrics"
	"fragranceetl/internal/storage/sqlfile"
	"fragranceetl/internal/transformer"
)

// runTransform normalizes the raw table into the output table. The output
// replaces the previous file only when the whole table was written.
func runTransform(ctx context.Context, p config.Pipeline) error {
	in, err := file.NewLocal(p.Source.File.Path).Open(ctx)
	if err != nil {
		return fmt.Errorf("raw table: %w", err)
	}
	out, err := file.NewLocal(p.Output.Path).Create(ctx)
	if err != nil {
		in.Close()
		return fmt.Errorf("normalized table: %w", err)
	}
	defer out.Close()

	sum, err := transformer.Run(ctx, in, out, transformer.ConfigFromPipeline(p))
	if err != nil {
		return err
	}
	if err := out.Commit(); err != nil {
		return fmt.Errorf("normalized table: %w", err)
	}
	log.Printf("transform: wrote %s records=%d columns=%d", p.Output.Path, sum.Records, len(sum.Columns))
	return nil
}

// generateOptions maps the batches section onto sqlfile.Options.
func generateOptions(p config.Pipeline) sqlfile.Options {
	b := p.Batches
	opt := sqlfile.Options{
		Dir:           b.Dir,
		Table:         b.Table,
		Prefix:        b.Prefix,
		BatchSize:     b.BatchSize,
		Require:       b.Require,
		DedupeKeys:    b.DedupeKeys,
		ChannelBuffer: p.Runtime.ChannelBuffer,
	}
	if opt.Table == "" {
		opt.Table = config.DefaultTable
	}
	if opt.Prefix == "" {
		opt.Prefix = config.DefaultBatchPrefix
	}
	if opt.BatchSize <= 0 {
		opt.BatchSize = config.DefaultBatchSize
	}
	return opt
}

// runGenerate writes the normalized table as SQL batch files.
func runGenerate(ctx context.Context, p config.Pipeline) (err error) {
	job := p.JobName()
	start := time.Now()
	defer func() { metrics.RecordStep(job, "generate", err, time.Since(start)) }()

	src, err := file.NewLocal(p.Output.Path).Open(ctx)
	if err != nil {
		return fmt.Errorf("normalized table: %w", err)
	}
	sum, err := sqlfile.Generate(ctx, src, generateOptions(p))
	if err != nil {
		return err
	}

	metrics.RecordRow(job, "emitted", sum.Rows)
	metrics.RecordRow(job, "dropped_required", int64(sum.DroppedRequired))
	metrics.RecordRow(job, "dropped_duplicate", int64(sum.DroppedDuplicate))
	metrics.RecordBatches(job, int64(len(sum.Files)))
	return nil
}

// newExecutor builds the executor for import.kind and a func releasing it.
func newExecutor(ctx context.Context, p config.Pipeline) (importer.Executor, func(), error) {
	im := p.Import
	switch im.Kind {
	case "", "cli":
		return importer.NewCLI(im), func() {}, nil
	default:
		table := p.Batches.Table
		if table == "" {
			table = config.DefaultTable
		}
		db, err := importer.OpenDB(ctx, im.Kind, im.DSN, table, im.CreateTable)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
}

// runImport executes the batch files. Per-file failures are part of the
// report, not the error.
func runImport(ctx context.Context, p config.Pipeline) (*importer.Report, error) {
	files, err := importer.ListBatches(p.Batches.Dir, p.Import.Pattern)
	if err != nil {
		return nil, err
	}
	ex, closeFn, err := newExecutor(ctx, p)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	rep, err := importer.Run(ctx, files, ex, importer.ConfigFromImport(p.JobName(), p.Import))
	if err != nil {
		return rep, err
	}
	log.Printf("import: success=%d errors=%d elapsed=%s", rep.SuccessCount, rep.ErrorCount, rep.Elapsed.Truncate(time.Millisecond))
	return rep, nil
}
