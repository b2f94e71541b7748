// Package eps implements the events-per-second meter shown in the header
// (spec §4.G): a 60-slot rolling window advanced one slot per second.
package eps

import "time"

// WindowSize is the number of one-second slots retained in the rolling
// window.
const WindowSize = 60

// Meter counts incoming lines and, once per second, folds the running
// count into a fixed-size rolling window. It is driven entirely by the
// scheduler's tick messages rather than by wall-clock polling internally,
// matching the teacher/original's tick-based rate tracking instead of a
// timer goroutine of its own.
type Meter struct {
	history    [WindowSize]uint64
	current    uint64
	currentEPS uint64
	lastTick   time.Time
}

// New returns a Meter with an empty history, ready to receive RecordLine
// and Tick calls.
func New(now time.Time) *Meter {
	return &Meter{lastTick: now}
}

// RecordLine increments the current second's counter. Called once per
// ingested entry.
func (m *Meter) RecordLine() {
	m.current++
}

// Tick advances the window by one slot if at least a second has elapsed
// since the last tick, sliding the oldest slot out. It is a no-op if less
// than a second has passed, so the scheduler can call it on every draw
// tick without needing its own once-a-second timer.
func (m *Meter) Tick(now time.Time) {
	if now.Sub(m.lastTick) < time.Second {
		return
	}
	m.currentEPS = m.current
	copy(m.history[:], m.history[1:])
	m.history[WindowSize-1] = m.current
	m.current = 0
	m.lastTick = now
}

// Current returns the most recently completed second's line count.
func (m *Meter) Current() uint64 { return m.currentEPS }

// History returns the 60-second rolling window, oldest first, suitable
// for a sparkline.
func (m *Meter) History() [WindowSize]uint64 { return m.history }

// StatusTTL is how long a status-strip message stays visible before
// being cleared (spec §6).
const StatusTTL = 3 * time.Second

// Status holds the footer's optional transient message (spec §3
// ViewState.status): a message plus the instant it was set, expiring
// after StatusTTL. Lives next to the EPS meter because both are
// "advanced once per scheduler tick" concerns (spec §4.G groups them).
type Status struct {
	message string
	setAt   time.Time
	active  bool
}

// Set overwrites the status message unconditionally, per spec §4.G
// ("set_status overwrites unconditionally").
func (s *Status) Set(message string, now time.Time) {
	s.message = message
	s.setAt = now
	s.active = true
}

// Clear empties the status immediately.
func (s *Status) Clear() {
	s.active = false
	s.message = ""
}

// Expire clears the status if StatusTTL has elapsed since it was set.
// Called once per scheduler tick alongside Meter.Tick.
func (s *Status) Expire(now time.Time) {
	if s.active && now.Sub(s.setAt) >= StatusTTL {
		s.Clear()
	}
}

// Message returns the current status text and whether one is active.
func (s *Status) Message() (string, bool) {
	return s.message, s.active
}
