package builtin

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"fragranceetl/pkg/records"
)

// DeDup drops records whose key was already seen, keeping the first
// occurrence. State spans calls, so feeding successive batches de-duplicates
// the whole stream. Only 64-bit key hashes are retained.
//
// A record's key is built from Keys. Records with a missing or nil key field
// cannot be keyed and always pass through.
type DeDup struct {
	Keys []string

	seen map[uint64]struct{}
	buf  []byte
}

// NewDeDup returns a DeDup over keys.
func NewDeDup(keys []string) *DeDup {
	return &DeDup{Keys: keys, seen: make(map[uint64]struct{})}
}

func (d *DeDup) keyOf(r records.Record) (uint64, bool) {
	d.buf = d.buf[:0]
	for i, k := range d.Keys {
		v, ok := r[k]
		if !ok || v == nil {
			return 0, false
		}
		if i > 0 {
			d.buf = append(d.buf, '\x1f')
		}
		switch t := v.(type) {
		case string:
			d.buf = append(d.buf, t...)
		default:
			d.buf = fmt.Append(d.buf, t)
		}
	}
	return xxh3.Hash(d.buf), true
}

// Duplicate reports whether r repeats an earlier key, recording the key when
// it is new.
func (d *DeDup) Duplicate(r records.Record) bool {
	if len(d.Keys) == 0 {
		return false
	}
	if d.seen == nil {
		d.seen = make(map[uint64]struct{})
	}
	h, ok := d.keyOf(r)
	if !ok {
		return false
	}
	if _, dup := d.seen[h]; dup {
		return true
	}
	d.seen[h] = struct{}{}
	return false
}

// Apply filters in place and returns the kept records plus the number dropped.
func (d *DeDup) Apply(in []records.Record) ([]records.Record, int) {
	out := in[:0]
	for _, r := range in {
		if !d.Duplicate(r) {
			out = append(out, r)
		}
	}
	return out, len(in) - len(out)
}

// Seen returns the number of distinct keys recorded so far.
func (d *DeDup) Seen() int { return len(d.seen) }
