package clipboardexport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rivermark/logview/internal/logentry"
)

func TestEntryTextNoExtraLines(t *testing.T) {
	e := logentry.Entry{Raw: "plain line"}
	if got := EntryText(e); got != "plain line" {
		t.Fatalf("EntryText() = %q, want %q", got, "plain line")
	}
}

func TestEntryTextWithExtraLines(t *testing.T) {
	e := logentry.Entry{Raw: "first", ExtraLines: []string{"second", "third"}}
	want := "first\nsecond\nthird"
	if got := EntryText(e); got != want {
		t.Fatalf("EntryText() = %q, want %q", got, want)
	}
}

func TestWriteFileFormat(t *testing.T) {
	entries := []logentry.Entry{
		{Raw: "one"},
		{Raw: "two", ExtraLines: []string{"two-extra"}},
		{Raw: "three"},
	}
	path := filepath.Join(t.TempDir(), "export.txt")
	if err := WriteFile(path, entries); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "one\ntwo\ntwo-extra\nthree\n"
	if string(got) != want {
		t.Fatalf("file contents = %q, want %q", string(got), want)
	}
}

func TestWriteFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := WriteFile(path, nil); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("file contents = %q, want empty", string(got))
	}
}
