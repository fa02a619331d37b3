package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"fragranceetl/internal/config"
)

// fakeExecutor fails or stalls on chosen file names and records the order
// files were executed in.
type fakeExecutor struct {
	fail  map[string]string // base name -> stderr
	stall map[string]bool   // base name -> block until ctx is done

	mu       sync.Mutex
	executed []string
	queries  []string

	verifyOut string
	verifyErr error
	prepErr   error
	prepared  bool
}

func (f *fakeExecutor) Execute(ctx context.Context, path string) error {
	name := filepath.Base(path)
	f.mu.Lock()
	f.executed = append(f.executed, name)
	f.mu.Unlock()

	if f.stall[name] {
		<-ctx.Done()
		return ctx.Err()
	}
	if msg, ok := f.fail[name]; ok {
		return &ExitError{Code: 1, Stderr: msg}
	}
	return nil
}

func (f *fakeExecutor) Verify(ctx context.Context, query string) (string, error) {
	f.queries = append(f.queries, query)
	return f.verifyOut, f.verifyErr
}

type preparingExecutor struct{ *fakeExecutor }

func (p preparingExecutor) Prepare(ctx context.Context) error {
	p.prepared = true
	return p.prepErr
}

// logSink collects Logf output.
type logSink struct {
	mu    sync.Mutex
	lines []string
}

func (l *logSink) Logf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *logSink) has(sub string) bool {
	for _, s := range l.lines {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (l *logSink) count(sub string) int {
	n := 0
	for _, s := range l.lines {
		if strings.Contains(s, sub) {
			n++
		}
	}
	return n
}

func batchNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = filepath.Join("batches", fmt.Sprintf("fragrances_%04d.sql", i+1))
	}
	return out
}

/*
TestRun_FailureIsIsolated engineers file 3 of 5 to fail and checks that
files 4 and 5 still run and that the counts add up.
*/
func TestRun_FailureIsIsolated(t *testing.T) {
	t.Parallel()

	files := batchNames(5)
	fx := &fakeExecutor{
		fail:      map[string]string{"fragrances_0003.sql": "  UNIQUE constraint failed: fragrances.fragrantica_id\n"},
		verifyOut: "│ total │\n│ 400   │\n",
	}
	logs := &logSink{}

	rep, err := Run(context.Background(), files, fx, Config{Logf: logs.Logf})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(fx.executed) != 5 {
		t.Fatalf("executed %v, want all 5 files", fx.executed)
	}
	if rep.SuccessCount != 4 || rep.ErrorCount != 1 || rep.SuccessCount+rep.ErrorCount != len(files) {
		t.Fatalf("counts: success=%d error=%d", rep.SuccessCount, rep.ErrorCount)
	}
	want := Failure{File: "fragrances_0003.sql", Reason: "UNIQUE constraint failed: fragrances.fragrantica_id"}
	if len(rep.Failures) != 1 || rep.Failures[0] != want {
		t.Fatalf("failures = %+v, want [%+v]", rep.Failures, want)
	}
	for i, task := range rep.Tasks {
		wantState := StateSucceeded
		if i == 2 {
			wantState = StateFailed
		}
		if task.State != wantState {
			t.Errorf("task %d state = %s, want %s", i, task.State, wantState)
		}
	}

	if !logs.has("ERROR importing fragrances_0003.sql: UNIQUE constraint failed") {
		t.Errorf("missing failure line in %q", logs.lines)
	}
	if !logs.has("Success: 4 files") || !logs.has("Errors: 1 files") {
		t.Errorf("missing summary in %q", logs.lines)
	}
	if len(fx.queries) != 1 || fx.queries[0] != config.DefaultVerifyQuery {
		t.Errorf("verify queries = %v", fx.queries)
	}
	if rep.Verification != fx.verifyOut || rep.VerifyErr != nil {
		t.Errorf("verification = %q, %v", rep.Verification, rep.VerifyErr)
	}
}

/*
TestRun_TimeoutIsDistinguishable stalls file 2 past the per-file timeout and
checks it is recorded as "timeout" without blocking file 3.
*/
func TestRun_TimeoutIsDistinguishable(t *testing.T) {
	t.Parallel()

	files := batchNames(3)
	fx := &fakeExecutor{stall: map[string]bool{"fragrances_0002.sql": true}}
	logs := &logSink{}

	start := time.Now()
	rep, err := Run(context.Background(), files, fx, Config{Timeout: 50 * time.Millisecond, Logf: logs.Logf})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("run took %s; the stalled file was not bounded", time.Since(start))
	}

	if rep.SuccessCount != 2 || rep.ErrorCount != 1 {
		t.Fatalf("counts: success=%d error=%d", rep.SuccessCount, rep.ErrorCount)
	}
	if got := rep.Tasks[1]; got.State != StateFailed || got.Reason != "timeout" {
		t.Fatalf("task 2 = %+v, want failed/timeout", got)
	}
	if rep.Tasks[2].State != StateSucceeded {
		t.Fatalf("task 3 = %+v, want succeeded", rep.Tasks[2])
	}
	if !logs.has("TIMEOUT importing fragrances_0002.sql") {
		t.Errorf("missing timeout line in %q", logs.lines)
	}
}

func TestRun_ProgressMilestones(t *testing.T) {
	t.Parallel()

	logs := &logSink{}
	_, err := Run(context.Background(), batchNames(120), &fakeExecutor{}, Config{Logf: logs.Logf})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Files 1, 50 and 100 (every 50 and milestones 1 and 100).
	if n := logs.count("Progress:"); n != 3 {
		t.Fatalf("progress lines = %d, want 3: %q", n, logs.lines)
	}
	for _, want := range []string{
		"[1/120] Progress: 0.8% - Importing fragrances_0001.sql...",
		"[50/120] Progress: 41.7% - Importing fragrances_0050.sql...",
		"[100/120] Progress: 83.3% - Importing fragrances_0100.sql...",
	} {
		if !logs.has(want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestRun_CustomCadence(t *testing.T) {
	t.Parallel()

	logs := &logSink{}
	_, err := Run(context.Background(), batchNames(6), &fakeExecutor{}, Config{
		ProgressEvery: 2,
		Milestones:    []int{},
		Logf:          logs.Logf,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := logs.count("Progress:"); n != 3 {
		t.Fatalf("progress lines = %d, want 3: %q", n, logs.lines)
	}
}

func TestRun_NoFiles(t *testing.T) {
	t.Parallel()

	rep, err := Run(context.Background(), nil, &fakeExecutor{}, Config{})
	if !errors.Is(err, ErrNoBatches) || rep != nil {
		t.Fatalf("Run(nil) = %v, %v; want ErrNoBatches", rep, err)
	}
}

func TestRun_VerifyErrorIsReported(t *testing.T) {
	t.Parallel()

	fx := &fakeExecutor{verifyErr: &ExitError{Code: 1, Stderr: "no such table: fragrances"}}
	logs := &logSink{}
	rep, err := Run(context.Background(), batchNames(1), fx, Config{VerifyQuery: "SELECT 1", Logf: logs.Logf})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.VerifyErr == nil || rep.SuccessCount != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if fx.queries[0] != "SELECT 1" {
		t.Fatalf("query = %q", fx.queries[0])
	}
	if !logs.has("verify: no such table: fragrances") {
		t.Fatalf("missing verify line in %q", logs.lines)
	}
}

func TestRun_PrepareFailureStopsRun(t *testing.T) {
	t.Parallel()

	fx := &fakeExecutor{prepErr: errors.New("permission denied")}
	rep, err := Run(context.Background(), batchNames(2), preparingExecutor{fx}, Config{Logf: func(string, ...any) {}})
	if err == nil || !strings.Contains(err.Error(), "prepare import") || rep != nil {
		t.Fatalf("Run = %v, %v; want prepare error", rep, err)
	}
	if !fx.prepared || len(fx.executed) != 0 {
		t.Fatalf("prepared=%v executed=%v", fx.prepared, fx.executed)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := Run(ctx, batchNames(3), &fakeExecutor{}, Config{Logf: func(string, ...any) {}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if rep == nil || rep.Tasks[0].State != StatePending {
		t.Fatalf("report = %+v; tasks should stay pending", rep)
	}
}

func TestConfigFromImport(t *testing.T) {
	t.Parallel()

	cfg := ConfigFromImport("fragrances", config.Import{TimeoutSeconds: 5, ProgressEvery: 10, VerifyQuery: "SELECT 2"})
	if cfg.Timeout != 5*time.Second || cfg.ProgressEvery != 10 || cfg.VerifyQuery != "SELECT 2" || cfg.Job != "fragrances" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if d := ConfigFromImport("", config.Import{}); d.Timeout != config.DefaultTimeout {
		t.Fatalf("default timeout = %s", d.Timeout)
	}
}
