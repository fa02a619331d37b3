// Package schema defines the canonical fragrance record produced by the
// normalizer and the column layouts used for the normalized table and the
// target database table.
package schema

import (
	"strconv"

	"fragranceetl/internal/ddl"
	"fragranceetl/pkg/records"
)

// Kind is the logical type of a canonical column.
type Kind string

const (
	KindText  Kind = "text"
	KindInt   Kind = "int"
	KindFloat Kind = "float"
)

// Columns lists the canonical field names in output order.
var Columns = []string{
	"name", "brand", "gender", "year", "perfumer",
	"topNotes", "middleNotes", "baseNotes", "mainAccords",
	"description", "rating", "votes", "imageUrl", "externalId",
}

// SQLColumns maps each canonical field to its database column.
var SQLColumns = map[string]string{
	"name":        "name",
	"brand":       "brand",
	"gender":      "gender",
	"year":        "year",
	"perfumer":    "perfumer",
	"topNotes":    "top_notes",
	"middleNotes": "middle_notes",
	"baseNotes":   "base_notes",
	"mainAccords": "main_accords",
	"description": "description",
	"rating":      "rating",
	"votes":       "votes",
	"imageUrl":    "image_url",
	"externalId":  "fragrantica_id",
}

// ColumnKinds gives the logical type of each canonical field.
var ColumnKinds = map[string]Kind{
	"year":   KindInt,
	"rating": KindFloat,
	"votes":  KindInt,
}

// KindOf returns the logical type of a canonical field; unknown fields are text.
func KindOf(col string) Kind {
	if k, ok := ColumnKinds[col]; ok {
		return k
	}
	return KindText
}

// NotNull lists canonical fields the target table declares NOT NULL.
var NotNull = []string{"name", "brand"}

// Fragrance is one normalized record. Every field is independently nullable.
type Fragrance struct {
	Name        *string  `db:"name"`
	Brand       *string  `db:"brand"`
	Gender      *string  `db:"gender"`
	Year        *int64   `db:"year"`
	Perfumer    *string  `db:"perfumer"`
	TopNotes    *string  `db:"top_notes"`
	MiddleNotes *string  `db:"middle_notes"`
	BaseNotes   *string  `db:"base_notes"`
	MainAccords *string  `db:"main_accords"`
	Description *string  `db:"description"`
	Rating      *float64 `db:"rating"`
	Votes       *int64   `db:"votes"`
	ImageURL    *string  `db:"image_url"`
	ExternalID  *string  `db:"fragrantica_id"`
}

// Values returns the fields in Columns order. Each value is nil, string,
// int64 or float64.
func (f Fragrance) Values() []any {
	return []any{
		str(f.Name), str(f.Brand), str(f.Gender), i64(f.Year), str(f.Perfumer),
		str(f.TopNotes), str(f.MiddleNotes), str(f.BaseNotes), str(f.MainAccords),
		str(f.Description), f64(f.Rating), i64(f.Votes), str(f.ImageURL), str(f.ExternalID),
	}
}

// Record returns the fields keyed by canonical name.
func (f Fragrance) Record() records.Record {
	vals := f.Values()
	r := make(records.Record, len(Columns))
	for i, c := range Columns {
		r[c] = vals[i]
	}
	return r
}

// Strings renders the fields in Columns order for the normalized table.
// Nulls become empty cells.
func (f Fragrance) Strings() []string {
	vals := f.Values()
	out := make([]string, len(vals))
	for i, v := range vals {
		switch t := v.(type) {
		case string:
			out[i] = t
		case int64:
			out[i] = strconv.FormatInt(t, 10)
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return out
}

func str(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func i64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func f64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// SQLColumnList returns the database columns in Columns order.
func SQLColumnList() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = SQLColumns[c]
	}
	return out
}

// KeyKind is passed to TableDef's mapType for the unique external id column,
// which some dialects cannot index as an unbounded text type.
const KeyKind = "key"

// TableDef describes the target table for a dialect. mapType turns a logical
// kind ("text", "int", "float" or KeyKind) into the dialect's column type.
func TableDef(table string, mapType func(kind string) string) ddl.TableDef {
	notNull := make(map[string]bool, len(NotNull))
	for _, c := range NotNull {
		notNull[c] = true
	}
	cols := make([]ddl.ColumnDef, 0, len(Columns))
	for _, c := range Columns {
		kind := string(KindOf(c))
		if c == "externalId" {
			kind = KeyKind
		}
		cols = append(cols, ddl.ColumnDef{
			Name:     SQLColumns[c],
			SQLType:  mapType(kind),
			Nullable: !notNull[c],
			Unique:   c == "externalId",
		})
	}
	return ddl.TableDef{FQN: table, Columns: cols}
}
