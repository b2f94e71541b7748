// Package history implements the lazy, chunked backward reader spec §4.K
// describes: when the cursor hits the top of the visible set, the
// scheduler asks a Handle for one more chunk of older lines, read
// backward from a seekable source in fixed-size chunks rather than
// loading the whole file up front.
package history

import (
	"bytes"
	"io"
	"os"
	"strings"
)

// ChunkLines is the fixed number of lines loaded per backward read
// (spec §6 "History chunk").
const ChunkLines = 500

// Handle is the lazy backward-history contract the viewport (spec §4.F)
// checks before requesting a prepend, and the scheduler (spec §4.J) calls
// to actually fetch one.
type Handle interface {
	// HasMore reports whether any older content remains unread.
	HasMore() bool
	// LoadChunk reads and returns up to ChunkLines older raw lines,
	// oldest first, ready to be parsed and prepended to the store. An
	// empty, nil-error result with HasMore()==false means history is
	// exhausted.
	LoadChunk() ([]string, error)
}

// FileHandle implements Handle over an os.File, walking backward from a
// fixed starting offset (typically the byte position in the file where
// live tailing began, so the tail-seeded lines are never double-counted).
type FileHandle struct {
	f         *os.File
	pos       int64 // absolute offset of the start of not-yet-read content
	exhausted bool
}

// readBlock bounds a single backward disk read; grown in a loop until a
// full chunk of newlines is found or the start of the file is reached.
const readBlock = 64 * 1024

// Open returns a FileHandle that walks path backward starting at
// startOffset. A negative startOffset means "the whole file" (start from
// its current size).
func Open(path string, startOffset int64) (*FileHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if startOffset < 0 {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, err
		}
		startOffset = info.Size()
	}
	return &FileHandle{f: f, pos: startOffset, exhausted: startOffset == 0}, nil
}

// Close releases the underlying file handle.
func (h *FileHandle) Close() error { return h.f.Close() }

// HasMore reports whether offset 0 has been reached yet.
func (h *FileHandle) HasMore() bool { return !h.exhausted }

// Pos returns the current backward cursor: the absolute byte offset of
// the start of the not-yet-read region. Exposed so callers can use a
// throwaway handle to compute a seed boundary (see ingest.FileProducer).
func (h *FileHandle) Pos() int64 { return h.pos }

// LoadChunk reads up to ChunkLines lines immediately before h.pos, moves
// h.pos backward past them, and returns them oldest-first.
func (h *FileHandle) LoadChunk() ([]string, error) {
	if h.exhausted {
		return nil, nil
	}

	var buf []byte
	start := h.pos
	for bytes.Count(buf, []byte("\n")) <= ChunkLines && start > 0 {
		size := int64(readBlock)
		if size > start {
			size = start
		}
		readAt := start - size
		block := make([]byte, size)
		if _, err := h.f.ReadAt(block, readAt); err != nil && err != io.EOF {
			return nil, err
		}
		buf = append(block, buf...)
		start = readAt
	}

	// The newline that ends buf terminates its newest line; it is not a
	// boundary between two lines of this chunk.
	boundary := findBoundary(bytes.TrimSuffix(buf, []byte("\n")))
	kept := buf[boundary:]
	h.pos = start + int64(boundary)
	if h.pos == 0 {
		h.exhausted = true
	}

	trimmed := strings.TrimSuffix(string(kept), "\n")
	if trimmed == "" {
		return nil, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// findBoundary returns the index just past the ChunkLines-th newline
// counted from the end of buf, or 0 if buf holds fewer than that many
// lines (meaning the remainder belongs entirely to this chunk).
func findBoundary(buf []byte) int {
	count := 0
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i] == '\n' {
			count++
			if count == ChunkLines {
				return i + 1
			}
		}
	}
	return 0
}
