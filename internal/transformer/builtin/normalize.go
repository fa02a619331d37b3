// Package builtin contains the small, reusable record transformations and
// field extractors used by the fragrance normalizer and batch generator.
package builtin

import (
	"strings"

	"fragranceetl/pkg/records"
)

const nbspace = "\u00a0"

// textCleaner folds the UTF-8-read-as-Latin-1 form of a no-break space
// (U+00C2 followed by NBSP or a plain space) and bare NBSPs to ASCII space.
var textCleaner = strings.NewReplacer(
	"\u00c2"+nbspace, " ",
	"\u00c2 ", " ",
	nbspace, " ",
)

// CleanText applies the Normalize rules to one string.
func CleanText(s string) string {
	if strings.ContainsAny(s, "\u00c2"+nbspace) {
		s = textCleaner.Replace(s)
	}
	if HasEdgeSpace(s) {
		s = strings.TrimSpace(s)
	}
	return s
}

// Normalize cleans every string value of each record in place: mojibake and
// no-break spaces become ASCII spaces, then edge whitespace is trimmed.
// Non-string values are left alone.
type Normalize struct{}

// Apply mutates and returns in.
func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		Normalize{}.Record(r)
	}
	return in
}

// Record cleans a single record in place.
func (Normalize) Record(r records.Record) {
	for k, v := range r {
		if s, ok := v.(string); ok {
			if c := CleanText(s); c != s {
				r[k] = c
			}
		}
	}
}

// HasEdgeSpace reports whether s starts or ends with ASCII space, tab, LF or
// CR. It never allocates.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return isASCIISpace(s[0]) || isASCIISpace(s[len(s)-1])
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
