package builtin

import "fragranceetl/pkg/records"

// Require removes any record missing a value for one of Fields.
type Require struct {
	Fields []string
}

// Keep reports whether r has a non-nil, non-empty value for every field.
func (r Require) Keep(rec records.Record) bool {
	for _, f := range r.Fields {
		v, exists := rec[f]
		if !exists || v == nil || v == "" {
			return false
		}
	}
	return true
}

// Apply filters in place and returns the kept records plus the number dropped.
func (r Require) Apply(in []records.Record) ([]records.Record, int) {
	if len(r.Fields) == 0 {
		return in, 0
	}
	out := in[:0]
	for _, rec := range in {
		if r.Keep(rec) {
			out = append(out, rec)
		}
	}
	return out, len(in) - len(out)
}
