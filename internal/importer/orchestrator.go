package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"fragranceetl/internal/config"
	"fragranceetl/internal/metrics"
)

// State is the lifecycle of one batch file within a run.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Task is one batch file and its outcome.
type Task struct {
	Path    string
	State   State
	Reason  string
	Elapsed time.Duration
}

// Name is the file's base name.
func (t Task) Name() string { return filepath.Base(t.Path) }

// Failure pairs a file name with its failure reason.
type Failure struct {
	File   string
	Reason string
}

// Report is the outcome of one import run.
type Report struct {
	SuccessCount int
	ErrorCount   int
	Failures     []Failure
	Tasks        []Task

	// Verification is the raw output of the verification query.
	Verification string
	VerifyErr    error

	Elapsed time.Duration
}

// Config tunes Run. Zero values take the defaults from package config.
type Config struct {
	Job           string
	Timeout       time.Duration
	ProgressEvery int
	Milestones    []int
	VerifyQuery   string

	// Logf receives operator-facing lines. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// ConfigFromImport maps the import section of a pipeline onto Config.
func ConfigFromImport(job string, im config.Import) Config {
	return Config{
		Job:           job,
		Timeout:       im.Timeout(),
		ProgressEvery: im.ProgressEvery,
		Milestones:    im.Milestones,
		VerifyQuery:   im.VerifyQuery,
	}
}

func (c *Config) applyDefaults() {
	if c.Job == "" {
		c.Job = config.DefaultJob
	}
	if c.Timeout <= 0 {
		c.Timeout = config.DefaultTimeout
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = config.DefaultProgressEvery
	}
	if c.Milestones == nil {
		c.Milestones = config.DefaultMilestones
	}
	if c.VerifyQuery == "" {
		c.VerifyQuery = config.DefaultVerifyQuery
	}
	if c.Logf == nil {
		c.Logf = log.Printf
	}
}

// Run executes files in order, one at a time. A failing or timed-out file is
// recorded and the run moves on. After the last file the verification query
// runs once and its output lands in the report.
//
// The returned error is reserved for problems that stop the run: no files,
// a failed Prepare, or ctx cancellation. The report is non-nil whenever any
// file was attempted.
func Run(ctx context.Context, files []string, ex Executor, cfg Config) (rep *Report, err error) {
	if len(files) == 0 {
		return nil, ErrNoBatches
	}
	cfg.applyDefaults()
	logf := cfg.Logf

	start := time.Now()
	defer func() {
		metrics.RecordStep(cfg.Job, "import", err, time.Since(start))
	}()

	if p, ok := ex.(Preparer); ok {
		if err := p.Prepare(ctx); err != nil {
			return nil, fmt.Errorf("prepare import: %w", err)
		}
	}

	rep = &Report{Tasks: make([]Task, len(files))}
	for i, f := range files {
		rep.Tasks[i] = Task{Path: f, State: StatePending}
	}

	total := len(files)
	milestones := make(map[int]bool, len(cfg.Milestones))
	for _, m := range cfg.Milestones {
		milestones[m] = true
	}

	logf("%s", strings.Repeat("=", 60))
	logf("Importing %d SQL batch files (timeout %s per file)", total, cfg.Timeout)
	logf("%s", strings.Repeat("=", 60))

	for i := range rep.Tasks {
		if ctxErr := ctx.Err(); ctxErr != nil {
			rep.Elapsed = time.Since(start)
			return rep, fmt.Errorf("import interrupted after %d of %d files: %w", i, total, ctxErr)
		}

		t := &rep.Tasks[i]
		idx := i + 1
		if idx%cfg.ProgressEvery == 0 || milestones[idx] {
			logf("[%d/%d] Progress: %.1f%% - Importing %s...", idx, total, float64(idx)/float64(total)*100, t.Name())
		}

		t.State = StateRunning
		fileStart := time.Now()
		fctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		execErr := ex.Execute(fctx, t.Path)
		timedOut := errors.Is(fctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
		cancel()
		t.Elapsed = time.Since(fileStart)

		switch {
		case execErr == nil:
			t.State = StateSucceeded
			rep.SuccessCount++
			metrics.RecordFile(cfg.Job, string(StateSucceeded))
		case timedOut || errors.Is(execErr, ErrTimeout):
			t.State, t.Reason = StateFailed, ErrTimeout.Error()
			rep.ErrorCount++
			rep.Failures = append(rep.Failures, Failure{File: t.Name(), Reason: t.Reason})
			metrics.RecordFile(cfg.Job, "timeout")
			logf("TIMEOUT importing %s", t.Name())
		default:
			if ctxErr := ctx.Err(); ctxErr != nil {
				t.State = StatePending
				rep.Elapsed = time.Since(start)
				return rep, fmt.Errorf("import interrupted at %s: %w", t.Name(), ctxErr)
			}
			t.State, t.Reason = StateFailed, reason(execErr)
			rep.ErrorCount++
			rep.Failures = append(rep.Failures, Failure{File: t.Name(), Reason: t.Reason})
			metrics.RecordFile(cfg.Job, string(StateFailed))
			logf("ERROR importing %s: %s", t.Name(), t.Reason)
		}
	}

	logf("%s", strings.Repeat("=", 60))
	logf("Import completed!")
	logf("Success: %d files", rep.SuccessCount)
	logf("Errors: %d files", rep.ErrorCount)
	logf("%s", strings.Repeat("=", 60))

	logf("Verifying import...")
	vctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	rep.Verification, rep.VerifyErr = ex.Verify(vctx, cfg.VerifyQuery)
	cancel()
	if rep.VerifyErr != nil {
		logf("verify: %s", reason(rep.VerifyErr))
	} else {
		logf("%s", strings.TrimRight(rep.Verification, "\n"))
	}

	rep.Elapsed = time.Since(start)
	return rep, nil
}
