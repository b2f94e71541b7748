package eps

import (
	"testing"
	"time"
)

func TestRecordAndTick(t *testing.T) {
	start := time.Unix(0, 0)
	m := New(start)
	m.RecordLine()
	m.RecordLine()
	m.RecordLine()

	m.Tick(start.Add(500 * time.Millisecond))
	if m.Current() != 0 {
		t.Fatal("tick under 1s should not advance the window")
	}

	m.Tick(start.Add(time.Second))
	if m.Current() != 3 {
		t.Fatalf("current = %d, want 3", m.Current())
	}

	h := m.History()
	if h[WindowSize-1] != 3 {
		t.Fatalf("last history slot = %d, want 3", h[WindowSize-1])
	}
}

func TestTickResetsCounter(t *testing.T) {
	start := time.Unix(0, 0)
	m := New(start)
	m.RecordLine()
	m.Tick(start.Add(time.Second))
	m.Tick(start.Add(2 * time.Second))
	if m.Current() != 0 {
		t.Fatalf("current = %d, want 0 after an idle second", m.Current())
	}
}

func TestHistorySlides(t *testing.T) {
	start := time.Unix(0, 0)
	m := New(start)
	now := start
	for i := 1; i <= WindowSize+5; i++ {
		m.RecordLine()
		now = now.Add(time.Second)
		m.Tick(now)
	}
	h := m.History()
	if h[0] == 0 && h[WindowSize-1] == 0 {
		t.Fatal("window should retain recent non-zero slots")
	}
}

func TestStatusSetAndExpire(t *testing.T) {
	var s Status
	start := time.Unix(0, 0)

	if msg, ok := s.Message(); ok || msg != "" {
		t.Fatalf("zero-value status should be inactive, got %q, %v", msg, ok)
	}

	s.Set("copied to clipboard", start)
	msg, ok := s.Message()
	if !ok || msg != "copied to clipboard" {
		t.Fatalf("Message() = %q, %v; want active message", msg, ok)
	}

	s.Expire(start.Add(StatusTTL - time.Millisecond))
	if _, ok := s.Message(); !ok {
		t.Fatal("status should still be active just under the TTL")
	}

	s.Expire(start.Add(StatusTTL))
	if _, ok := s.Message(); ok {
		t.Fatal("status should have expired at the TTL boundary")
	}
}

func TestStatusSetOverwritesUnconditionally(t *testing.T) {
	var s Status
	now := time.Unix(0, 0)
	s.Set("first", now)
	s.Set("second", now.Add(time.Second))
	msg, ok := s.Message()
	if !ok || msg != "second" {
		t.Fatalf("Message() = %q, %v; want the most recent Set to win", msg, ok)
	}
}

func TestStatusClear(t *testing.T) {
	var s Status
	s.Set("x", time.Unix(0, 0))
	s.Clear()
	if _, ok := s.Message(); ok {
		t.Fatal("Clear should deactivate the status immediately")
	}
}
