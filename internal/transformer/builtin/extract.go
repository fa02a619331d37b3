package builtin

import (
	"encoding/json"
	"regexp"
	"strings"
)

// MaxAccords bounds the number of accords kept by ExtractAccords.
const MaxAccords = 5

// UnknownBrand is returned by ExtractBrand when no brand can be inferred.
const UnknownBrand = "Unknown"

var (
	topNotesRe    = regexp.MustCompile(`(?i)top notes? (?:are|is) ([^;.]+)`)
	middleNotesRe = regexp.MustCompile(`(?i)middle notes? (?:are|is) ([^;.]+)`)
	baseNotesRe   = regexp.MustCompile(`(?i)base notes? (?:are|is) ([^;.]+)`)
)

// parseQuotedList decodes a Python-style list literal such as
// "['Jasmine', 'Rose']". Single quotes are turned into double quotes and the
// result must be a valid JSON array; anything else yields ok=false.
func parseQuotedList(v any) (items []any, ok bool) {
	s, isStr := v.(string)
	if !isStr {
		return nil, false
	}
	if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &items); err != nil {
		return nil, false
	}
	return items, true
}

// ExtractPerfumer returns the first perfumer of a list literal, or nil when
// the value is missing, malformed, empty, or its first element is not a
// non-empty string.
func ExtractPerfumer(v any) *string {
	items, ok := parseQuotedList(v)
	if !ok || len(items) == 0 {
		return nil
	}
	s, ok := items[0].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

// ExtractAccords joins the first MaxAccords elements of a list literal with
// "," in source order. Missing, malformed or empty lists yield nil, as does a
// list whose leading elements are not all strings.
func ExtractAccords(v any) *string {
	items, ok := parseQuotedList(v)
	if !ok || len(items) == 0 {
		return nil
	}
	if len(items) > MaxAccords {
		items = items[:MaxAccords]
	}
	parts := make([]string, len(items))
	for i, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil
		}
		parts[i] = s
	}
	joined := strings.Join(parts, ",")
	return &joined
}

// Notes is the top/middle/base triad recovered from a description.
type Notes struct {
	Top, Middle, Base *string
}

// ExtractNotes searches a free-text description for "top notes are ...",
// "middle notes are ..." and "base notes are ..." (also "note"/"is", any
// case). Each match runs to the next ';' or '.'. The three searches are
// independent; a non-string or empty description yields three nils.
func ExtractNotes(v any) Notes {
	desc, ok := v.(string)
	if !ok || desc == "" {
		return Notes{}
	}
	return Notes{
		Top:    firstGroup(topNotesRe, desc),
		Middle: firstGroup(middleNotesRe, desc),
		Base:   firstGroup(baseNotesRe, desc),
	}
}

func firstGroup(re *regexp.Regexp, s string) *string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	g := strings.TrimSpace(m[1])
	if g == "" {
		return nil
	}
	return &g
}

// ExtractBrand returns the first whitespace-separated token of name when
// there are at least two tokens, otherwise UnknownBrand. Non-string input
// also yields UnknownBrand.
func ExtractBrand(v any) string {
	name, ok := v.(string)
	if !ok {
		return UnknownBrand
	}
	parts := strings.Fields(name)
	if len(parts) >= 2 {
		return parts[0]
	}
	return UnknownBrand
}
