package transformer

import (
	"fmt"
	"regexp"
	"strings"

	"fragranceetl/internal/parser/html"
	"fragranceetl/internal/schema"
	"fragranceetl/internal/transformer/builtin"
	"fragranceetl/pkg/records"
)

// Raw column keys as produced by the CSV reader's header normalization
// ("Main Accords" -> "main_accords").
const (
	ColName        = "name"
	ColGender      = "gender"
	ColPerfumers   = "perfumers"
	ColAccords     = "main_accords"
	ColDescription = "description"
	ColRating      = "rating_value"
	ColVotes       = "rating_count"
	ColURL         = "url"
)

// Description modes for NormalizeOptions.DescriptionText.
const (
	DescriptionRaw  = "raw"
	DescriptionText = "text"
)

// genderQualifiers are cut from display names, in this order.
var genderQualifiers = []string{"for women", "for men"}

// urlExt matches a short trailing file extension such as ".html".
var urlExt = regexp.MustCompile(`\.[A-Za-z][A-Za-z0-9]{0,4}$`)

// NormalizeOptions tunes Normalize.
type NormalizeOptions struct {
	// DescriptionText is DescriptionRaw (default) or DescriptionText, which
	// reduces HTML descriptions to plain text before notes are searched.
	DescriptionText string
}

// Normalize maps one raw row to a canonical fragrance. It never fails: a
// field that is missing, empty or unparseable is nil.
//
// year and imageUrl have no source column and are always nil.
func Normalize(raw records.Record, opts NormalizeOptions) schema.Fragrance {
	var f schema.Fragrance

	f.Name = StripGender(raw.Get(ColName))
	brand := builtin.ExtractBrand(value(f.Name))
	f.Brand = &brand
	f.Gender = text(raw.Get(ColGender))
	f.Perfumer = builtin.ExtractPerfumer(raw.Get(ColPerfumers))
	f.MainAccords = builtin.ExtractAccords(raw.Get(ColAccords))

	f.Description = text(raw.Get(ColDescription))
	if f.Description != nil && opts.DescriptionText == DescriptionText {
		if t := html.Text(*f.Description); t != "" {
			f.Description = &t
		} else {
			f.Description = nil
		}
	}
	notes := builtin.ExtractNotes(value(f.Description))
	f.TopNotes, f.MiddleNotes, f.BaseNotes = notes.Top, notes.Middle, notes.Base

	f.Rating = builtin.CoerceFloat(raw.Get(ColRating))
	f.Votes = builtin.CoerceInt(raw.Get(ColVotes))
	f.ExternalID = ExternalID(raw.Get(ColURL))
	return f
}

// StripGender cuts a display name at the first "for women", then at the
// first "for men", and trims the rest. Non-strings and names that end up
// empty yield nil.
func StripGender(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	for _, q := range genderQualifiers {
		if i := strings.Index(s, q); i >= 0 {
			s = s[:i]
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ExternalID returns the last path segment of a product URL without its file
// extension: ".../perfume/Dior/Sauvage-31861.html" -> "Sauvage-31861".
// Query strings and fragments are ignored. Non-strings yield nil.
func ExternalID(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	s = urlExt.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	return &s
}

// text passes a scalar through as a string. Empty strings and nil yield nil.
func text(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s = t
	default:
		s = fmt.Sprint(t)
	}
	if s == "" {
		return nil
	}
	return &s
}

// value unwraps p for the extractors, which treat nil as absent.
func value(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
