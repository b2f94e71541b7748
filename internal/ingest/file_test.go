package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func writeLines(t *testing.T, path string, lines []string) {
	t.Helper()
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestFileProducerSeedsTailAndFollows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	initial := make([]string, 5)
	for i := range initial {
		initial[i] = "seed " + strconv.Itoa(i)
	}
	writeLines(t, path, initial)

	p, err := NewFileProducer(path)
	if err != nil {
		t.Fatalf("NewFileProducer: %v", err)
	}
	if p.DisplayName() != path {
		t.Fatalf("DisplayName() = %q, want %q", p.DisplayName(), path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := NewChannel()
	go p.Run(ctx, ch)

	var seeded []string
	deadline := time.Now().Add(2 * time.Second)
	for len(seeded) < 5 && time.Now().Before(deadline) {
		seeded = append(seeded, ch.Drain(100)...)
		if len(seeded) < 5 {
			time.Sleep(20 * time.Millisecond)
		}
	}
	if len(seeded) != 5 {
		t.Fatalf("seeded lines = %v, want 5 lines", seeded)
	}
	if seeded[0] != "seed 0" || seeded[4] != "seed 4" {
		t.Fatalf("unexpected seed order: %v", seeded)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("reopening for append: %v", err)
	}
	if _, err := f.WriteString("live line\n"); err != nil {
		t.Fatalf("appending: %v", err)
	}
	f.Close()

	var followed []string
	deadline = time.Now().Add(2 * time.Second)
	for len(followed) == 0 && time.Now().Before(deadline) {
		followed = append(followed, ch.Drain(100)...)
		if len(followed) == 0 {
			time.Sleep(20 * time.Millisecond)
		}
	}
	if len(followed) == 0 || followed[0] != "live line" {
		t.Fatalf("expected to observe the appended line, got %v", followed)
	}
}

func TestFileProducerMissingFile(t *testing.T) {
	_, err := NewFileProducer(filepath.Join(t.TempDir(), "does-not-exist.log"))
	if err == nil {
		t.Fatal("expected an error opening a missing file")
	}
}

func TestFileProducerHistoryHandleSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	writeLines(t, path, []string{"a", "b", "c"})

	p, err := NewFileProducer(path)
	if err != nil {
		t.Fatalf("NewFileProducer: %v", err)
	}
	if p.History() == nil {
		t.Fatal("file producer should expose a history handle")
	}
}
