package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rivermark/logview/internal/history"
)

// TailSeed bounds how many lines of prior content a producer pre-seeds
// before live-tailing begins (spec §6).
const TailSeed = 1000

// ReconnectInterval and ReconnectCap bound a producer's reconnection
// policy on connection loss (spec §7: "2s interval, up to 5 minutes").
const (
	ReconnectInterval = 2 * time.Second
	ReconnectCap      = 5 * time.Minute
)

// Producer is any asynchronous emitter of UTF-8 lines (spec §4.D). The
// core treats every producer identically regardless of what it tails —
// a file, stdin, or a child process streaming remote logs.
type Producer interface {
	// DisplayName is shown in the header to identify this source.
	DisplayName() string
	// History returns a lazy backward-history handle, or nil if this
	// producer has none (e.g. stdin, a live process).
	History() history.Handle
	// Run pre-seeds ch with prior content, then live-tails until ctx is
	// canceled, injecting synthetic status lines on connection loss and
	// reconnecting on a fixed schedule. Run returns once the source
	// reaches permanent end-of-stream or ctx is canceled; it never
	// panics.
	Run(ctx context.Context, ch *Channel)
}

// newProducerID mints a stable id a producer keeps for its whole
// lifetime, so every status line it emits (across reconnects) can be
// traced back to the same source even if DisplayName collides with
// another producer (two files with the same basename, two containers
// named "web").
func newProducerID() string {
	return uuid.NewString()
}

// statusLine formats a synthetic producer status line in the shape spec
// §4.D gives as an example (">>> connection lost, reconnecting…"),
// tagged with the emitting producer's id so multi-producer sessions
// (spec §9) can tell sources apart even when their display names match.
func statusLine(producerID, format string, args ...interface{}) string {
	return fmt.Sprintf(">>> [%s] %s", producerID[:8], fmt.Sprintf(format, args...))
}
