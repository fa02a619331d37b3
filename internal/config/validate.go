// Package config provides configuration models and helpers for ETL pipelines.
//
// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that is surfaced but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "import.kind",
// "transform[0].options.progress_every").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline lints a Pipeline without mutating it.
//
//	issues := config.ValidatePipeline(p)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  fmt.Sprintf("job is empty; %q will be used for logs and metric labels", DefaultJob),
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateTransforms(p.Transform)...)
	if strings.TrimSpace(p.Output.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.path",
			Message:  "output.path must not be empty; it links the transform and generate stages",
		})
	}
	issues = append(issues, validateBatches(p.Batches)...)
	issues = append(issues, validateImport(p.Import)...)
	if p.Runtime.ChannelBuffer < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.channel_buffer",
			Message:  "channel_buffer must not be negative",
		})
	}

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	}
	if s.Kind != "file" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unsupported source kind %q; only \"file\" is implemented", s.Kind),
		})
	}
	if strings.TrimSpace(s.File.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.file.path",
			Message:  "file source requires a non-empty path",
		})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	if p.Kind != "" && p.Kind != "csv" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q; only \"csv\" is implemented", p.Kind),
		})
	}

	switch enc := strings.ToLower(p.Options.String("encoding", "utf-8")); enc {
	case "utf-8", "utf8", "windows-1252", "cp1252", "latin1", "iso-8859-1":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.encoding",
			Message:  fmt.Sprintf("unsupported encoding %q", enc),
		})
	}
	if s := p.Options.String("comma", ","); len([]rune(s)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  "comma must be a single character",
		})
	}
	return issues
}

func validateTransforms(ts []Transform) []Issue {
	var issues []Issue

	for i, t := range ts {
		if t.Kind != "normalize" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("transform[%d].kind", i),
				Message:  fmt.Sprintf("unknown transform kind %q is ignored", t.Kind),
			})
			continue
		}
		if n := t.Options.Int("progress_every", DefaultNormalizeEvery); n < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("transform[%d].options.progress_every", i),
				Message:  "progress_every must not be negative",
			})
		}
		switch mode := t.Options.String("description_text", "raw"); mode {
		case "raw", "text":
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("transform[%d].options.description_text", i),
				Message:  fmt.Sprintf("description_text must be \"raw\" or \"text\", got %q", mode),
			})
		}
	}
	return issues
}

func validateBatches(b Batches) []Issue {
	var issues []Issue

	if strings.TrimSpace(b.Dir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "batches.dir",
			Message:  "batches.dir must not be empty",
		})
	}
	if b.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "batches.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	if strings.ContainsAny(b.Table, " ;'\"") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "batches.table",
			Message:  fmt.Sprintf("table name %q contains characters that cannot appear in an identifier", b.Table),
		})
	}
	return issues
}

func validateImport(im Import) []Issue {
	var issues []Issue

	kind := im.Kind
	if kind == "" {
		kind = "cli"
	}
	switch kind {
	case "cli":
		if strings.TrimSpace(im.Database) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "import.database",
				Message:  "cli import requires a target database identifier",
			})
		}
	case "sqlite", "postgres", "mssql":
		if strings.TrimSpace(im.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "import.dsn",
				Message:  fmt.Sprintf("%s import requires a dsn", kind),
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "import.kind",
			Message:  fmt.Sprintf("unknown import kind %q", im.Kind),
		})
	}

	if im.TimeoutSeconds < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "import.timeout_seconds",
			Message:  "timeout_seconds must not be negative",
		})
	}
	if im.ProgressEvery < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "import.progress_every",
			Message:  "progress_every must not be negative",
		})
	}
	for i, m := range im.Milestones {
		if m <= 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("import.milestones[%d]", i),
				Message:  fmt.Sprintf("milestone %d can never be reached; file indexes start at 1", m),
			})
		}
	}
	return issues
}
