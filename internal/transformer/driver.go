package transformer

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"fragranceetl/internal/config"
	"fragranceetl/internal/metrics"
	"fragranceetl/internal/parser/csv"
	"fragranceetl/internal/schema"
	"fragranceetl/internal/transformer/builtin"
	"fragranceetl/pkg/records"
)

// Config configures Run.
type Config struct {
	// Job labels log lines and metrics.
	Job string

	// ParserOptions are passed to csv.StreamRecords for the raw table.
	ParserOptions config.Options

	Normalize NormalizeOptions

	// Pre runs on every raw record before Normalize. Nil means
	// Chain{builtin.Normalize{}}.
	Pre Chain

	// ProgressEvery logs a progress line every N records (default
	// config.DefaultNormalizeEvery).
	ProgressEvery int

	// ChannelBuffer sizes the reader → normalizer channel.
	ChannelBuffer int

	// Logf receives progress lines; nil means log.Printf.
	Logf func(format string, args ...any)
}

// Summary reports one Run.
type Summary struct {
	Records     int
	ParseErrors int

	// Columns is the column set of the normalized table.
	Columns []string

	// SourceColumns are the raw table's header keys.
	SourceColumns []string

	Elapsed time.Duration
}

// ConfigFromPipeline builds a Config from the parser and normalize sections
// of p.
func ConfigFromPipeline(p config.Pipeline) Config {
	nopt := p.NormalizeOptions()
	return Config{
		Job:           p.JobName(),
		ParserOptions: p.Parser.Options,
		Normalize: NormalizeOptions{
			DescriptionText: nopt.String("description_text", DescriptionRaw),
		},
		ProgressEvery: nopt.Int("progress_every", config.DefaultNormalizeEvery),
		ChannelBuffer: p.Runtime.ChannelBuffer,
	}
}

// Run streams every row of the raw table in through Normalize, in source
// order, and writes the normalized table to out. Rows are independent: a
// malformed row that the CSV reader cannot split is counted in ParseErrors
// and skipped; every row it can split yields exactly one output row.
//
// in is closed before returning. A missing or unreadable header is fatal.
func Run(ctx context.Context, in io.ReadCloser, out io.Writer, cfg Config) (Summary, error) {
	start := time.Now()
	var sum Summary

	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}
	every := cfg.ProgressEvery
	if every <= 0 {
		every = config.DefaultNormalizeEvery
	}
	pre := cfg.Pre
	if pre == nil {
		pre = Chain{builtin.Normalize{}}
	}

	tw, err := csv.NewTableWriter(out, schema.Columns)
	if err != nil {
		in.Close()
		return sum, err
	}
	sum.Columns = tw.Columns()

	recCh := make(chan records.Record, cfg.ChannelBuffer)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(recCh)
		keys, err := csv.StreamRecords(gctx, in, cfg.ParserOptions, recCh, func(line int, err error) {
			sum.ParseErrors++
			logf("transform: skip line=%d err=%v", line, err)
		})
		sum.SourceColumns = keys
		if err != nil {
			return fmt.Errorf("read raw table: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		batch := make([]records.Record, 1)
		for rec := range recCh {
			batch[0] = rec
			for _, r := range pre.Apply(batch) {
				f := Normalize(r, cfg.Normalize)
				if err := tw.Write(f.Strings()); err != nil {
					return fmt.Errorf("write normalized row %d: %w", sum.Records+1, err)
				}
				sum.Records++
				if sum.Records%every == 0 {
					logf("transform: processed=%d elapsed=%s", sum.Records, time.Since(start).Truncate(time.Millisecond))
				}
			}
		}
		return nil
	})

	err = g.Wait()
	if ferr := tw.Flush(); err == nil && ferr != nil {
		err = fmt.Errorf("flush normalized table: %w", ferr)
	}
	sum.Elapsed = time.Since(start)

	metrics.RecordRow(cfg.Job, "processed", int64(sum.Records))
	metrics.RecordRow(cfg.Job, "parse_errors", int64(sum.ParseErrors))
	metrics.RecordStep(cfg.Job, "transform", err, sum.Elapsed)
	if err != nil {
		return sum, err
	}

	logf("transform: records=%d parse_errors=%d columns=%d elapsed=%s",
		sum.Records, sum.ParseErrors, len(sum.Columns), sum.Elapsed.Truncate(time.Millisecond))
	return sum, nil
}
