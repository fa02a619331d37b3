// Package config defines the JSON-serializable pipeline model for the
// fragrance ETL. One pipeline file drives all three stages (transform,
// generate, import) so that paths and table names are declared once.
//
// Example (trimmed):
//
//	{
//	  "job":       "fragrances",
//	  "source":    { "kind": "file", "file": { "path": "data/fra_perfumes.csv" } },
//	  "parser":    { "kind": "csv", "options": { "encoding": "utf-8", "lazy_quotes": true } },
//	  "transform": [ { "kind": "normalize", "options": { "progress_every": 5000 } } ],
//	  "output":    { "path": "data/fra_cleaned_transformed.csv" },
//	  "batches":   { "dir": "migrations/fragrance-import", "table": "fragrances", "batch_size": 100 },
//	  "import":    { "kind": "cli", "database": "senada-db", "local": true, "timeout_seconds": 30 }
//	}
package config

import (
	"encoding/json"
	"time"
)

// Default values applied by the Resolved helpers when a pipeline leaves a
// knob unset.
const (
	DefaultJob            = "fragrances"
	DefaultTable          = "fragrances"
	DefaultBatchSize      = 100
	DefaultBatchPrefix    = "fragrances_"
	DefaultTimeout        = 30 * time.Second
	DefaultProgressEvery  = 50
	DefaultNormalizeEvery = 5000
	DefaultVerifyQuery    = "SELECT COUNT(*) as total FROM fragrances"
)

// DefaultCommand is the CLI prefix used when import.command is empty.
var DefaultCommand = []string{"npx", "wrangler", "d1", "execute"}

// DefaultMilestones are the early checkpoints logged in addition to the
// periodic progress interval.
var DefaultMilestones = []int{1, 100, 200, 300, 400, 500, 600, 700}

// Pipeline is the top-level object decoded from configs/pipelines/*.json.
type Pipeline struct {
	// Job names the run for logs and metric labels.
	Job string `json:"job"`

	Source Source `json:"source"`
	Parser Parser `json:"parser"`

	// Transform lists the normalization steps. The only kind understood today
	// is "normalize"; its options tune the record normalizer and driver.
	Transform []Transform `json:"transform"`

	Output  Output        `json:"output"`
	Batches Batches       `json:"batches"`
	Import  Import        `json:"import"`
	Runtime RuntimeConfig `json:"runtime"`
}

// RuntimeConfig controls channel buffering between the reader and the
// normalizer loop.
type RuntimeConfig struct {
	ChannelBuffer int `json:"channel_buffer"`
}

// Source identifies the raw table.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string     `json:"kind"`
	File SourceFile `json:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path"`
}

// Parser selects how the raw table is decoded.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is interpreted by the parser. For CSV:
	//   comma (string), lazy_quotes (bool), trim_space (bool),
	//   encoding (string), unicode_nfc (bool), header_map (object)
	Options Options `json:"options"`
}

// Transform defines a single transformation step.
type Transform struct {
	Kind    string  `json:"kind"`
	Options Options `json:"options"`
}

// Output is the normalized table written by the transform stage and read by
// the generate stage.
type Output struct {
	Path string `json:"path"`
}

// Batches configures SQL batch file generation.
type Batches struct {
	// Dir receives the generated files and is the import stage's input.
	Dir string `json:"dir"`

	// Table is the target table named in every INSERT.
	Table string `json:"table"`

	// BatchSize bounds the number of rows per file.
	BatchSize int `json:"batch_size"`

	// Prefix starts every file name; a zero-padded sequence number follows.
	Prefix string `json:"prefix"`

	// Require lists canonical fields that must be non-null for a row to be
	// emitted (the target table declares name and brand NOT NULL).
	Require []string `json:"require"`

	// DedupeKeys lists canonical fields forming a row key; later rows whose
	// key was already emitted are skipped.
	DedupeKeys []string `json:"dedupe_keys"`
}

// Import configures the batch import orchestrator.
type Import struct {
	// Kind selects the executor: "cli" (default) runs an external tool;
	// "sqlite", "postgres" and "mssql" execute files directly.
	Kind string `json:"kind"`

	// Command is the argv prefix of the external tool.
	Command []string `json:"command"`

	// Database is the target database identifier passed to the tool.
	Database string `json:"database"`

	// Local adds LocalFlag to every invocation.
	Local     bool   `json:"local"`
	LocalFlag string `json:"local_flag"`

	// FileFlag and CommandFlag name the tool flags that carry the batch file
	// path and the verification query ("--file", "--command").
	FileFlag    string `json:"file_flag"`
	CommandFlag string `json:"command_flag"`

	// WorkDir is the working directory for the tool.
	WorkDir string `json:"workdir"`

	// DSN is used by the direct database executors.
	DSN string `json:"dsn"`

	// Pattern filters files in batches.dir (default "*.sql").
	Pattern string `json:"pattern"`

	// CreateTable makes the direct database executors create the target
	// table before the first file is executed.
	CreateTable bool `json:"create_table"`

	TimeoutSeconds int    `json:"timeout_seconds"`
	ProgressEvery  int    `json:"progress_every"`
	Milestones     []int  `json:"milestones"`
	VerifyQuery    string `json:"verify_query"`
}

// Timeout returns the per-file timeout, defaulting to DefaultTimeout.
func (i Import) Timeout() time.Duration {
	if i.TimeoutSeconds > 0 {
		return time.Duration(i.TimeoutSeconds) * time.Second
	}
	return DefaultTimeout
}

// NormalizeOptions returns the options of the first "normalize" transform,
// or an empty Options when none is configured.
func (p Pipeline) NormalizeOptions() Options {
	for _, t := range p.Transform {
		if t.Kind == "normalize" {
			return t.Options
		}
	}
	return Options{}
}

// JobName returns Job or DefaultJob.
func (p Pipeline) JobName() string {
	if p.Job != "" {
		return p.Job
	}
	return DefaultJob
}

// Options fetches typed values from free-form JSON maps. Missing keys and
// values of an unexpected type yield the provided default.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// Int returns the int value for key or def. encoding/json decodes numbers as
// float64, so both float64 and int are accepted.
func (o Options) Int(key string, def int) int {
	switch n := o[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return def
}

// Rune returns the first rune of a string value for key, or def.
func (o Options) Rune(key string, def rune) rune {
	if s, ok := o[key].(string); ok && len(s) > 0 {
		return []rune(s)[0]
	}
	return def
}

// StringMap returns the string-valued entries of an object value for key.
// The result is never nil.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if m, ok := o[key].(map[string]any); ok {
		for k, v := range m {
			if s, ok := v.(string); ok {
				res[k] = s
			}
		}
	}
	return res
}

// StringSlice returns the string elements of an array value for key, or nil.
func (o Options) StringSlice(key string) []string {
	switch vv := o[key].(type) {
	case []any:
		out := make([]string, 0, len(vv))
		for _, x := range vv {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return vv
	}
	return nil
}

// Any returns the raw value for key.
func (o Options) Any(key string) any {
	return o[key]
}

// UnmarshalJSON makes a missing or null "options" object decode to an empty,
// non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
