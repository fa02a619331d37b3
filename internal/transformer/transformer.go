// Package transformer turns raw fragrance rows into canonical records. It
// holds the record normalizer and the streaming driver that runs it over a
// whole raw table.
package transformer

import "fragranceetl/pkg/records"

// Transformer rewrites a slice of raw records before normalization.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
