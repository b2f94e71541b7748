package ingest

import (
	"context"
	"os/exec"
	"testing"
	"time"
)

// A command that exits (even cleanly) is treated as a connection loss and
// retried, since every real ProcessProducer use (ssh tail, kubectl logs -f,
// docker compose logs -f) is expected to run forever; this test only
// checks that output from the first run reaches the channel before the
// context is canceled.
func TestProcessProducerStreamsOutput(t *testing.T) {
	p := NewProcessProducer("echo-test", func(ctx context.Context) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "echo out1; echo err1 >&2; echo out2")
	})
	if p.DisplayName() != "echo-test" {
		t.Fatalf("DisplayName() = %q, want %q", p.DisplayName(), "echo-test")
	}
	if p.History() != nil {
		t.Fatal("process producer should report no history handle")
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := NewChannel()
	done := make(chan struct{})
	go func() {
		p.Run(ctx, ch)
		close(done)
	}()

	var got []string
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < 3 && time.Now().Before(deadline) {
		got = append(got, ch.Drain(100)...)
		if len(got) < 3 {
			time.Sleep(20 * time.Millisecond)
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return promptly after cancellation")
	}

	seen := map[string]bool{}
	for _, line := range got {
		seen[line] = true
	}
	for _, want := range []string{"out1", "err1", "out2"} {
		if !seen[want] {
			t.Errorf("missing expected line %q in %v", want, got)
		}
	}
}

func TestProcessProducerStopsOnCancel(t *testing.T) {
	p := NewProcessProducer("sleep-test", func(ctx context.Context) *exec.Cmd {
		return exec.CommandContext(ctx, "sleep", "5")
	})

	ctx, cancel := context.WithCancel(context.Background())
	ch := NewChannel()
	done := make(chan struct{})
	go func() {
		p.Run(ctx, ch)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return promptly after context cancellation")
	}
}
