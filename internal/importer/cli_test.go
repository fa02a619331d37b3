package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"fragranceetl/internal/config"
)

const helperEnv = "GO_WANT_IMPORT_HELPER"

// TestHelperProcess stands in for the external database tool. Invoked as
//
//	test-binary -test.run=TestHelperProcess -- <database> [--local] --file=<path>
//
// it acts on the batch file's first line: "fail" writes to stderr and exits
// 2, "sleep" blocks for a minute, anything else succeeds. --command=<query>
// prints a one-row result table.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	for _, a := range args {
		switch {
		case strings.HasPrefix(a, "--command="):
			fmt.Fprintf(os.Stdout, "query=%s\n│ total │\n│ 3     │\n", strings.TrimPrefix(a, "--command="))
			os.Exit(0)
		case strings.HasPrefix(a, "--file="):
			b, err := os.ReadFile(strings.TrimPrefix(a, "--file="))
			if err != nil {
				fmt.Fprintf(os.Stderr, "cannot read: %v\n", err)
				os.Exit(3)
			}
			switch strings.SplitN(string(b), "\n", 2)[0] {
			case "fail":
				fmt.Fprintln(os.Stderr, "near \"INSERT\": syntax error")
				os.Exit(2)
			case "sleep":
				time.Sleep(time.Minute)
			}
			os.Exit(0)
		}
	}
	fmt.Fprintf(os.Stderr, "unexpected args %q\n", args)
	os.Exit(4)
}

func helperCLI() *CLI {
	return &CLI{
		Command:  []string{os.Args[0], "-test.run=TestHelperProcess", "--"},
		Database: "senada-db",
		Local:    true,
		Env:      []string{helperEnv + "=1"},
	}
}

func writeBatch(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func TestCLI_Args(t *testing.T) {
	t.Parallel()

	c := NewCLI(config.Import{Database: "senada-db", Local: true})
	got := c.Args("--file", "/tmp/fragrances_0001.sql")
	want := []string{"npx", "wrangler", "d1", "execute", "senada-db", "--local", "--file=/tmp/fragrances_0001.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Args = %q, want %q", got, want)
	}

	c = NewCLI(config.Import{Command: []string{"d1"}, Database: "db", LocalFlag: "--offline"})
	if got := c.Args("--command", "SELECT 1"); !reflect.DeepEqual(got, []string{"d1", "db", "--command=SELECT 1"}) {
		t.Fatalf("Args without local = %q", got)
	}
	c.Local = true
	if got := c.Args("-f", "x.sql"); !reflect.DeepEqual(got, []string{"d1", "db", "--offline", "-f=x.sql"}) {
		t.Fatalf("Args with custom local flag = %q", got)
	}
}

func TestCLI_Execute(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := helperCLI()

	if err := c.Execute(context.Background(), writeBatch(t, dir, "ok.sql", "INSERT INTO fragrances (name) VALUES ('A');\n")); err != nil {
		t.Fatalf("Execute(ok): %v", err)
	}

	err := c.Execute(context.Background(), writeBatch(t, dir, "bad.sql", "fail\n"))
	var ee *ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("Execute(fail) err = %v (%T), want *ExitError", err, err)
	}
	if ee.Code != 2 || ee.Error() != `near "INSERT": syntax error` {
		t.Fatalf("ExitError = %d %q", ee.Code, ee.Error())
	}
}

func TestCLI_ExecuteTimeoutKillsTool(t *testing.T) {
	t.Parallel()

	c := helperCLI()
	c.WaitDelay = 500 * time.Millisecond
	path := writeBatch(t, t.TempDir(), "slow.sql", "sleep\n")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := c.Execute(ctx, path)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if el := time.Since(start); el > 10*time.Second {
		t.Fatalf("Execute returned after %s; tool was not killed", el)
	}
	if got := reason(err); got != "timeout" {
		t.Fatalf("reason = %q", got)
	}
}

func TestCLI_Verify(t *testing.T) {
	t.Parallel()

	out, err := helperCLI().Verify(context.Background(), config.DefaultVerifyQuery)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !strings.Contains(out, "query="+config.DefaultVerifyQuery) || !strings.Contains(out, "│ 3     │") {
		t.Fatalf("Verify output = %q", out)
	}
}

func TestCLI_EmptyCommand(t *testing.T) {
	t.Parallel()

	c := &CLI{Command: []string{""}}
	if _, err := c.Verify(context.Background(), "SELECT 1"); err == nil {
		t.Fatal("expected error for empty command")
	}
}

/*
TestRun_WithCLI drives the orchestrator through the real subprocess path:
five files, the third fails and the fourth stalls past the timeout.
*/
func TestRun_WithCLI(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for i, body := range []string{"ok", "ok", "fail", "sleep", "ok"} {
		writeBatch(t, dir, fmt.Sprintf("fragrances_%04d.sql", i+1), body+"\n")
	}
	files, err := ListBatches(dir, "")
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}

	logs := &logSink{}
	rep, err := Run(context.Background(), files, helperCLI(), Config{Timeout: 2 * time.Second, Logf: logs.Logf})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.SuccessCount != 3 || rep.ErrorCount != 2 {
		t.Fatalf("counts: success=%d error=%d (%+v)", rep.SuccessCount, rep.ErrorCount, rep.Failures)
	}
	want := []Failure{
		{File: "fragrances_0003.sql", Reason: `near "INSERT": syntax error`},
		{File: "fragrances_0004.sql", Reason: "timeout"},
	}
	if !reflect.DeepEqual(rep.Failures, want) {
		t.Fatalf("failures = %+v, want %+v", rep.Failures, want)
	}
	if !strings.Contains(rep.Verification, "│ total │") {
		t.Fatalf("verification = %q", rep.Verification)
	}
}

func TestListBatches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := ListBatches(dir, ""); !errors.Is(err, ErrNoBatches) {
		t.Fatalf("empty dir err = %v, want ErrNoBatches", err)
	}
	writeBatch(t, dir, "readme.md", "")
	if _, err := ListBatches(dir, ""); !errors.Is(err, ErrNoBatches) {
		t.Fatalf("non-sql only err = %v, want ErrNoBatches", err)
	}
	writeBatch(t, dir, "batch_10.sql", "")
	writeBatch(t, dir, "batch_9.sql", "")

	got, err := ListBatches(dir, "")
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	want := []string{filepath.Join(dir, "batch_9.sql"), filepath.Join(dir, "batch_10.sql")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ListBatches = %v, want %v", got, want)
	}

	if _, err := ListBatches(filepath.Join(dir, "missing"), ""); err == nil || errors.Is(err, ErrNoBatches) {
		t.Fatalf("missing dir err = %v", err)
	}
}
