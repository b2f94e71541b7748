// Package logentry defines the parsed representation of a log line.
package logentry

import "github.com/rivermark/logview/internal/levels"

// Entry is the immutable (save for ExtraLines) parsed representation of one
// log line plus any continuation lines grouped under it.
type Entry struct {
	Raw       string
	Level     levels.Severity
	Timestamp string // opaque, preserved verbatim; "" means absent
	Message   string // "" means absent
	Metadata  string // "" means absent
	HasTimestamp bool
	HasMessage   bool
	HasMetadata  bool

	ExtraLines []string
}

// WithTimestamp returns e with Timestamp set and HasTimestamp recorded.
func (e Entry) WithTimestamp(ts string) Entry {
	e.Timestamp = ts
	e.HasTimestamp = true
	return e
}

// WithMessage returns e with Message set and HasMessage recorded.
func (e Entry) WithMessage(msg string) Entry {
	e.Message = msg
	e.HasMessage = true
	return e
}

// WithMetadata returns e with Metadata set and HasMetadata recorded.
func (e Entry) WithMetadata(meta string) Entry {
	e.Metadata = meta
	e.HasMetadata = true
	return e
}

// DisplayMessage returns Message if present, otherwise Raw — the text the
// render surface shows after the level tag.
func (e Entry) DisplayMessage() string {
	if e.HasMessage {
		return e.Message
	}
	return e.Raw
}
