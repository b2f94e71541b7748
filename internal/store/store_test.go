package store

import (
	"testing"

	"github.com/rivermark/logview/internal/levels"
	"github.com/rivermark/logview/internal/logentry"
)

func structuredEntry(msg string) logentry.Entry {
	return logentry.Entry{Raw: msg, Level: levels.Info}.WithMessage(msg)
}

func unknownEntry(raw string) logentry.Entry {
	return logentry.Entry{Raw: raw, Level: levels.Unknown}
}

func TestAppendBasic(t *testing.T) {
	s := New()
	s.Append(structuredEntry("a"))
	s.Append(structuredEntry("b"))
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if s.At(0).Message != "a" || s.At(1).Message != "b" {
		t.Fatal("entries out of order")
	}
	if s.TotalCount() != 2 {
		t.Fatalf("total = %d, want 2", s.TotalCount())
	}
}

func TestAppendOverflowEvictsOldest(t *testing.T) {
	s := New()
	for i := 0; i < Max+10; i++ {
		s.Append(structuredEntry("x"))
	}
	if s.Len() != Max {
		t.Fatalf("len = %d, want %d", s.Len(), Max)
	}
	if s.TotalCount() != uint64(Max+10) {
		t.Fatalf("total = %d, want %d", s.TotalCount(), Max+10)
	}
}

func TestAppendGroupsUnknownUnderStructuredTail(t *testing.T) {
	s := New()
	s.Append(structuredEntry("exception trace:"))
	res := s.Append(unknownEntry("  at com.foo.Bar"))
	if res.Appended {
		t.Fatal("continuation line should not become its own entry")
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	tail := s.At(0)
	if len(tail.ExtraLines) != 1 || tail.ExtraLines[0] != "  at com.foo.Bar" {
		t.Fatalf("extra lines = %v", tail.ExtraLines)
	}
}

func TestAppendUnknownBeforeAnyStructuredStaysStandalone(t *testing.T) {
	s := New()
	s.Append(unknownEntry("plain line one"))
	res := s.Append(unknownEntry("plain line two"))
	if !res.Appended {
		t.Fatal("with no structured entry seen yet, unknown lines must stand alone")
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
}

func TestAppendUnknownAfterUnknownTailStandsAlone(t *testing.T) {
	s := New()
	s.Append(structuredEntry("first"))
	// Clear keeps HasStructured set but empties the ring, so the next
	// unknown line has no tail to join and becomes an unknown tail itself.
	s.Clear()
	s.Append(unknownEntry("continuation"))
	res := s.Append(unknownEntry("another unknown"))
	if !res.Appended {
		t.Fatal("an unknown tail should not itself accept further grouping")
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
}

func TestErrorCount(t *testing.T) {
	s := New()
	s.Append(logentry.Entry{Raw: "e", Level: levels.Error})
	s.Append(logentry.Entry{Raw: "f", Level: levels.Fatal})
	s.Append(logentry.Entry{Raw: "i", Level: levels.Info})
	if s.ErrorCount() != 2 {
		t.Fatalf("error count = %d, want 2", s.ErrorCount())
	}
}

func TestPrependOrdersOldestFirst(t *testing.T) {
	s := New()
	s.Append(structuredEntry("live-1"))
	batch := []logentry.Entry{structuredEntry("hist-1"), structuredEntry("hist-2")}
	n := s.Prepend(batch)
	if n != 2 {
		t.Fatalf("inserted = %d, want 2", n)
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	if s.At(0).Message != "hist-1" || s.At(1).Message != "hist-2" || s.At(2).Message != "live-1" {
		t.Fatalf("unexpected order: %s %s %s", s.At(0).Message, s.At(1).Message, s.At(2).Message)
	}
}

func TestPrependEvictsFromTailWhenFull(t *testing.T) {
	s := New()
	for i := 0; i < Max; i++ {
		s.Append(structuredEntry("live"))
	}
	s.Prepend([]logentry.Entry{structuredEntry("older")})
	if s.Len() != Max {
		t.Fatalf("len = %d, want %d", s.Len(), Max)
	}
	if s.At(0).Message != "older" {
		t.Fatal("prepended entry should now be the oldest")
	}
}

func TestClearEmptiesRingButKeepsCounters(t *testing.T) {
	s := New()
	s.Append(structuredEntry("a"))
	s.Append(logentry.Entry{Raw: "b", Level: levels.Error})
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("len = %d, want 0", s.Len())
	}
	if s.TotalCount() != 2 || s.ErrorCount() != 1 {
		t.Fatal("session counters must survive Clear")
	}
}

func TestSnapshotRange(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		s.Append(structuredEntry("x"))
	}
	got := s.Snapshot(1, 3)
	if len(got) != 2 {
		t.Fatalf("snapshot len = %d, want 2", len(got))
	}
	if s.Snapshot(4, 2) != nil {
		t.Fatal("inverted range should return nil")
	}
}
