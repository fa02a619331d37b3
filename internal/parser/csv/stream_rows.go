// Package csv streams delimited text files as records.Record values and writes
// normalized tables back out. Inputs are never buffered whole, so multi-GB
// files are fine.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/text/unicode/norm"

	"fragranceetl/internal/config"
	"fragranceetl/internal/transformer/builtin"
	"fragranceetl/pkg/records"
)

// StreamRecords reads a header line followed by data rows from src and sends
// one records.Record per data row to out, in file order. It returns the record
// keys derived from the header.
//
// Options (all optional):
//   - comma (string; first rune used; default ',')
//   - trim_space (bool; default true)
//   - lazy_quotes (bool; default true) → csv.Reader.LazyQuotes
//   - fields_per_record (int; 0 = variable width, >0 = enforce)
//   - header_map (object; source header → record key)
//   - encoding (string; utf-8, windows-1252, latin1)
//   - unicode_nfc (bool; default true) → NFC-normalize every cell
//   - stream_replace (object; byte pattern → replacement, applied before parsing)
//
// Empty cells become nil. Rows shorter than the header leave the missing keys
// absent. onErr(line, err) receives recoverable row errors; the row is skipped
// and the stream continues. A missing or unreadable header is fatal.
//
// src is closed before returning. The caller owns out.
func StreamRecords(
	ctx context.Context,
	src io.ReadCloser,
	opt config.Options,
	out chan<- records.Record,
	onErr func(line int, err error),
) ([]string, error) {
	defer src.Close()

	comma := opt.Rune("comma", ',')
	trim := opt.Bool("trim_space", true)
	lazy := opt.Bool("lazy_quotes", true)
	nfc := opt.Bool("unicode_nfc", true)
	fieldsPer := opt.Int("fields_per_record", 0)
	hm := opt.StringMap("header_map")

	r, err := decodeReader(src, opt.String("encoding", "utf-8"))
	if err != nil {
		return nil, err
	}
	r = wrapWithReplacements(r, opt.StringMap("stream_replace"))

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = lazy
	if fieldsPer > 0 {
		cr.FieldsPerRecord = fieldsPer
	} else {
		cr.FieldsPerRecord = -1
	}

	line := 0
	read := func() ([]string, error) { line++; return cr.Read() }

	hdr, err := read()
	if err != nil {
		if err == io.EOF {
			err = fmt.Errorf("read header: empty input")
		} else {
			err = fmt.Errorf("read header: %w", err)
		}
		if onErr != nil {
			onErr(line, err)
		}
		return nil, err
	}
	keys := HeaderKeys(hdr, hm)

	const logEveryN = 50_000
	rowsSeen := 0

	for {
		select {
		case <-ctx.Done():
			return keys, ctx.Err()
		default:
		}

		rec, err := read()
		if err == io.EOF {
			return keys, nil
		}
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("csv read: %w", err))
			}
			continue
		}

		row := make(records.Record, len(keys))
		for i, k := range keys {
			if i >= len(rec) {
				break
			}
			v := rec[i]
			if trim && builtin.HasEdgeSpace(v) {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				row[k] = nil
				continue
			}
			if nfc {
				v = norm.NFC.String(v)
			}
			row[k] = v
		}

		select {
		case out <- row:
			rowsSeen++
			if rowsSeen%logEveryN == 0 {
				log.Printf("reader: line=%d emitted=%d", line, rowsSeen)
			}
		case <-ctx.Done():
			return keys, ctx.Err()
		}
	}
}
