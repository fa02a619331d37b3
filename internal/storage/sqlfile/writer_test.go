package sqlfile

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLiteral(t *testing.T) {
	t.Parallel()

	s := "x"
	var nilStr *string
	n := int64(7)
	cases := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{"", "NULL"},
		{"Chanel", "'Chanel'"},
		{"L'Artisan", "'L''Artisan'"},
		{&s, "'x'"},
		{nilStr, "NULL"},
		{int64(1200), "1200"},
		{&n, "7"},
		{4.25, "4.25"},
		{math.NaN(), "NULL"},
		{math.Inf(1), "NULL"},
		{true, "1"},
	}
	for _, tc := range cases {
		if got := Literal(tc.in); got != tc.want {
			t.Errorf("Literal(%#v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestInsertStatement(t *testing.T) {
	t.Parallel()

	got, err := InsertStatement("fragrances", []string{"name", "votes"}, [][]any{
		{"Sauvage", int64(10)},
		{"O'Ma", nil},
	})
	if err != nil {
		t.Fatalf("InsertStatement: %v", err)
	}
	want := "INSERT INTO fragrances (name, votes) VALUES\n" +
		"('Sauvage', 10),\n" +
		"('O''Ma', NULL);\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	if _, err := InsertStatement("t", []string{"a"}, [][]any{{1, 2}}); err == nil {
		t.Fatal("want width error")
	}
	if _, err := InsertStatement("t", nil, nil); err == nil {
		t.Fatal("want empty columns error")
	}
}

// TestWriter_NumbersFilesInOrder checks that file names sort into write order
// and stale files from an earlier run are removed.
func TestWriter_NumbersFilesInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stale := filepath.Join(dir, "fragrances_0099.sql")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWriter(dir, "fragrances", "fragrances_")
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if n, err := w.RemoveStale(); err != nil || n != 1 {
		t.Fatalf("RemoveStale = %d, %v", n, err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if n, err := w.Copy(ctx, []string{"name"}, [][]any{{"a"}, {"b"}}); err != nil || n != 2 {
			t.Fatalf("Copy #%d = %d, %v", i, n, err)
		}
	}

	files := w.Files()
	want := []string{"fragrances_0001.sql", "fragrances_0002.sql", "fragrances_0003.sql"}
	if len(files) != len(want) {
		t.Fatalf("files = %v", files)
	}
	for i, f := range files {
		if filepath.Base(f) != want[i] {
			t.Fatalf("files[%d] = %s, want %s", i, f, want[i])
		}
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale file still present: %v", err)
	}
	b, _ := os.ReadFile(files[0])
	if !strings.HasPrefix(string(b), "INSERT INTO fragrances (name) VALUES\n") {
		t.Fatalf("file content = %q", b)
	}
}

func TestNewWriter_EmptyTable(t *testing.T) {
	t.Parallel()
	if _, err := NewWriter(t.TempDir(), " ", "x"); err == nil {
		t.Fatal("want error for empty table")
	}
}
