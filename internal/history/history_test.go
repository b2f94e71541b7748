package history

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, lines []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "log.txt")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func makeLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "line " + strconv.Itoa(i)
	}
	return lines
}

func TestLoadChunkSingleChunk(t *testing.T) {
	path := writeTempFile(t, makeLines(10))
	h, err := Open(path, -1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	if !h.HasMore() {
		t.Fatal("fresh handle over a non-empty file should have more")
	}
	chunk, err := h.LoadChunk()
	if err != nil {
		t.Fatalf("LoadChunk: %v", err)
	}
	if len(chunk) != 10 {
		t.Fatalf("len(chunk) = %d, want 10", len(chunk))
	}
	if chunk[0] != "line 0" || chunk[9] != "line 9" {
		t.Fatalf("chunk out of order: %v", chunk)
	}
	if h.HasMore() {
		t.Fatal("expected history exhausted after reading the whole file")
	}
}

func TestLoadChunkMultipleChunks(t *testing.T) {
	path := writeTempFile(t, makeLines(ChunkLines+50))
	h, err := Open(path, -1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	first, err := h.LoadChunk()
	if err != nil {
		t.Fatalf("LoadChunk: %v", err)
	}
	if len(first) != ChunkLines {
		t.Fatalf("len(first) = %d, want %d", len(first), ChunkLines)
	}
	if !h.HasMore() {
		t.Fatal("expected more history after the first chunk")
	}

	second, err := h.LoadChunk()
	if err != nil {
		t.Fatalf("LoadChunk: %v", err)
	}
	if len(second) != 50 {
		t.Fatalf("len(second) = %d, want 50", len(second))
	}
	if h.HasMore() {
		t.Fatal("expected history exhausted after both chunks")
	}
	if first[0] != "line 50" || second[len(second)-1] != "line 49" {
		t.Fatalf("unexpected boundary: first[0]=%q second[last]=%q", first[0], second[len(second)-1])
	}
}

func TestLoadChunkRespectsStartOffset(t *testing.T) {
	lines := makeLines(20)
	path := writeTempFile(t, lines)

	// Find the byte offset where "line 10" begins, so history only
	// covers lines 0..9, mirroring a FileProducer seed boundary.
	content := strings.Join(lines, "\n") + "\n"
	offset := int64(strings.Index(content, "line 10"))

	h, err := Open(path, offset)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	chunk, err := h.LoadChunk()
	if err != nil {
		t.Fatalf("LoadChunk: %v", err)
	}
	if len(chunk) != 10 {
		t.Fatalf("len(chunk) = %d, want 10", len(chunk))
	}
	if chunk[len(chunk)-1] != "line 9" {
		t.Fatalf("chunk[last] = %q, want line 9", chunk[len(chunk)-1])
	}
}

func TestOpenEmptyFileIsExhausted(t *testing.T) {
	path := writeTempFile(t, nil)
	if err := os.WriteFile(path, []byte{}, 0644); err != nil {
		t.Fatalf("truncating: %v", err)
	}
	h, err := Open(path, -1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()
	if h.HasMore() {
		t.Fatal("empty file should report no more history")
	}
}

func TestPosTracksBackwardCursor(t *testing.T) {
	path := writeTempFile(t, makeLines(5))
	h, err := Open(path, -1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	if _, err := h.LoadChunk(); err != nil {
		t.Fatalf("LoadChunk: %v", err)
	}
	if h.Pos() != 0 {
		t.Fatalf("Pos() = %d, want 0 after consuming the whole file", h.Pos())
	}
}
