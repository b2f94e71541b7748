package ingest

import (
	"bufio"
	"context"
	"io"

	"github.com/rivermark/logview/internal/history"
)

// StdinProducer streams lines from standard input until EOF. It has no
// history handle (piped input can't be seeked) and no reconnect policy —
// stdin closing is always a permanent end-of-stream (spec §4.D).
type StdinProducer struct {
	r io.Reader
}

// NewStdinProducer wraps r (normally os.Stdin).
func NewStdinProducer(r io.Reader) *StdinProducer {
	return &StdinProducer{r: r}
}

func (p *StdinProducer) DisplayName() string     { return "stdin" }
func (p *StdinProducer) History() history.Handle { return nil }

// Run scans r line by line, sending each to ch, until EOF or ctx
// cancellation. Scanning happens on its own goroutine so a blocked read
// doesn't prevent Run from observing ctx.Done().
func (p *StdinProducer) Run(ctx context.Context, ch *Channel) {
	lines := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(p.r)
		scanner.Buffer(make([]byte, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case line := <-lines:
			ch.Send(line)
		}
	}
}
