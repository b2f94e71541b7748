// Package store implements the bounded, ordered ring of parsed log entries
// (spec §3 EntryStore, §4.C). A single scheduler goroutine owns the Store;
// it performs no internal locking (spec §5: "no locking discipline is
// required inside the core because there is no shared mutable state across
// tasks").
package store

import (
	"github.com/rivermark/logview/internal/levels"
	"github.com/rivermark/logview/internal/logentry"
)

// Max is the fixed entry-ring capacity (spec §6).
const Max = 10_000

// Store is a fixed-capacity circular buffer of entries, pre-allocated like
// the teacher's BufferConsumer, generalized to support both tail-append
// (live ingest) and head-prepend (lazy history) with eviction from the
// opposite end.
type Store struct {
	buf   []logentry.Entry
	start int // index of the oldest entry
	count int

	totalCount  uint64
	errorCount  uint64
	hasStructured bool
}

// New allocates a Store with the fixed capacity Max.
func New() *Store {
	return &Store{buf: make([]logentry.Entry, Max)}
}

// Len returns the number of entries currently held.
func (s *Store) Len() int { return s.count }

// TotalCount is the monotonically increasing count of entries appended
// over the session (not the window).
func (s *Store) TotalCount() uint64 { return s.totalCount }

// ErrorCount is the monotonically increasing count of Error/Fatal entries
// appended over the session.
func (s *Store) ErrorCount() uint64 { return s.errorCount }

// HasStructured reports whether any non-Unknown entry has ever been
// appended to this store (enables continuation grouping).
func (s *Store) HasStructured() bool { return s.hasStructured }

func (s *Store) index(i int) int { return (s.start + i) % len(s.buf) }

// At returns the entry at logical position i (0 = oldest). Panics if i is
// out of [0, Len()) — callers must bounds-check, same discipline as a
// slice index.
func (s *Store) At(i int) logentry.Entry { return s.buf[s.index(i)] }

// AppendResult reports what Append actually did, so callers (the viewport,
// the EPS meter) can react only when a real entry was added.
type AppendResult struct {
	Appended    bool // false when the line was grouped into the tail entry
	EvictedHead bool // true when an existing entry at index 0 was evicted
}

// Append adds entry to the tail of the ring, or — when the multi-line
// grouping rule of spec §4.C applies — folds entry.Raw into the current
// tail entry's ExtraLines instead. Grouping only ever happens once a
// structured (non-Unknown) entry has been seen in this store's lifetime.
func (s *Store) Append(entry logentry.Entry) AppendResult {
	if entry.Level != levels.Unknown {
		s.hasStructured = true
	}

	if s.hasStructured && entry.Level == levels.Unknown && s.count > 0 {
		tailIdx := s.index(s.count - 1)
		if s.buf[tailIdx].Level != levels.Unknown {
			s.buf[tailIdx].ExtraLines = append(s.buf[tailIdx].ExtraLines, entry.Raw)
			return AppendResult{}
		}
	}

	s.totalCount++
	if entry.Level == levels.Error || entry.Level == levels.Fatal {
		s.errorCount++
	}

	evicted := false
	if s.count == len(s.buf) {
		s.start = (s.start + 1) % len(s.buf)
		s.count--
		evicted = true
	}
	s.buf[s.index(s.count)] = entry
	s.count++
	return AppendResult{Appended: true, EvictedHead: evicted}
}

// Prepend inserts a batch of already-parsed older entries at the head,
// oldest-first, evicting from the tail if Max is exceeded. Returns the
// number of entries actually inserted (== len(batch) unless batch itself
// exceeds Max, in which case only the newest Max are kept).
func (s *Store) Prepend(batch []logentry.Entry) int {
	if len(batch) == 0 {
		return 0
	}
	if len(batch) > len(s.buf) {
		batch = batch[len(batch)-len(s.buf):]
	}
	inserted := 0
	for i := len(batch) - 1; i >= 0; i-- {
		if s.count == len(s.buf) {
			s.count--
		}
		s.start = (s.start - 1 + len(s.buf)) % len(s.buf)
		s.buf[s.start] = batch[i]
		s.count++
		inserted++
	}
	return inserted
}

// Clear empties the ring. Session counters (TotalCount/ErrorCount/
// HasStructured) are not reset — they are cumulative over the session.
func (s *Store) Clear() {
	s.start = 0
	s.count = 0
}

// Snapshot returns entries [from, to) as a freshly allocated slice, oldest
// first. Intended for small windows (the viewport window, never the whole
// ring) per spec §9's "never materialize every visible entry" guidance.
func (s *Store) Snapshot(from, to int) []logentry.Entry {
	if from < 0 {
		from = 0
	}
	if to > s.count {
		to = s.count
	}
	if from >= to {
		return nil
	}
	out := make([]logentry.Entry, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, s.At(i))
	}
	return out
}
