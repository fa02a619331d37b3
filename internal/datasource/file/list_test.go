package file

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("--"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func TestList_NaturalOrderAndPattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "batch_10.sql", "batch_2.sql", "batch_1.sql", "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "sub.sql"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := List(dir, "*.sql")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{
		filepath.Join(dir, "batch_1.sql"),
		filepath.Join(dir, "batch_2.sql"),
		filepath.Join(dir, "batch_10.sql"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
}

func TestList_Errors(t *testing.T) {
	t.Parallel()

	if _, err := List(filepath.Join(t.TempDir(), "missing"), "*.sql"); err == nil {
		t.Fatal("expected error for missing dir")
	}
	if _, err := List(t.TempDir(), "["); err == nil {
		t.Fatal("expected error for bad pattern")
	}
}

func TestList_EmptyDir(t *testing.T) {
	t.Parallel()

	got, err := List(t.TempDir(), "")
	if err != nil || len(got) != 0 {
		t.Fatalf("List(empty) = %v, %v", got, err)
	}
}

func TestNaturalLess(t *testing.T) {
	t.Parallel()

	in := []string{"f_0010.sql", "f_10.sql", "f_9.sql", "f_0001.sql", "a.sql", "f_.sql", "f_2b.sql", "f_2a.sql"}
	sort.Slice(in, func(i, j int) bool { return NaturalLess(in[i], in[j]) })
	want := []string{"a.sql", "f_.sql", "f_0001.sql", "f_2a.sql", "f_2b.sql", "f_9.sql", "f_0010.sql", "f_10.sql"}
	if !reflect.DeepEqual(in, want) {
		t.Fatalf("sorted = %v, want %v", in, want)
	}
}
