// Package records defines the loosely-typed row shape shared by parsers and
// transformers. A Record maps a source column name to whatever scalar the
// parser produced for it: a string, a number, or nil for an empty cell.
//
// Column presence is never guaranteed. Callers read through the helpers below,
// which treat a missing key and a nil value the same way.
package records

// Record is one raw row keyed by source column name.
type Record map[string]any

// Get returns the value for key, or nil when the key is absent.
func (r Record) Get(key string) any {
	if r == nil {
		return nil
	}
	return r[key]
}

// String returns the value for key when it is a non-empty string.
func (r Record) String(key string) (string, bool) {
	s, ok := r.Get(key).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Has reports whether key carries a non-nil value.
func (r Record) Has(key string) bool {
	return r.Get(key) != nil
}
