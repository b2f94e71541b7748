package ingest

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rivermark/logview/internal/history"
)

// ProcessProducer streams the combined stdout/stderr of an external
// command, line by line, re-launching it on a fixed reconnect schedule
// if it exits before ctx is canceled. It is the shared shape behind the
// remote-shell, orchestrator, and compose-file producer subcommands
// (spec §6): each only differs in how the *exec.Cmd is built.
type ProcessProducer struct {
	name   string
	newCmd func(ctx context.Context) *exec.Cmd
	id     string
}

// NewProcessProducer returns a producer named name that (re)builds its
// command via newCmd each time it (re)connects.
func NewProcessProducer(name string, newCmd func(ctx context.Context) *exec.Cmd) *ProcessProducer {
	return &ProcessProducer{name: name, newCmd: newCmd, id: newProducerID()}
}

func (p *ProcessProducer) DisplayName() string     { return p.name }
func (p *ProcessProducer) History() history.Handle { return nil }

// Run launches the command, streams its combined output, and on exit
// injects a synthetic status line and retries every ReconnectInterval up
// to ReconnectCap before giving up permanently.
func (p *ProcessProducer) Run(ctx context.Context, ch *Channel) {
	deadline := time.Now().Add(ReconnectCap)
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !first && time.Now().After(deadline) {
			ch.Send(statusLine(p.id, "%s: giving up after %s", p.name, ReconnectCap))
			return
		}
		first = false

		clean := p.runOnce(ctx, ch)
		if clean {
			return
		}
		ch.Send(statusLine(p.id, "%s: connection lost, reconnecting…", p.name))
		select {
		case <-ctx.Done():
			return
		case <-time.After(ReconnectInterval):
		}
	}
}

// runOnce runs the command to completion (or until ctx cancellation) and
// returns true if the stop was a clean, intentional shutdown rather than
// the process dying unexpectedly.
func (p *ProcessProducer) runOnce(ctx context.Context, ch *Channel) bool {
	cmd := p.newCmd(ctx)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		ch.Send(statusLine(p.id, "%s: %v", p.name, err))
		return false
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		ch.Send(statusLine(p.id, "%s: %v", p.name, err))
		return false
	}
	if err := cmd.Start(); err != nil {
		ch.Send(statusLine(p.id, "%s: %v", p.name, err))
		return false
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); scanInto(stdout, ch) }()
	go func() { defer wg.Done(); scanInto(stderr, ch) }()
	scanDone := make(chan struct{})
	go func() { wg.Wait(); close(scanDone) }()

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		<-waitErr
		<-scanDone
		return true
	case <-waitErr:
		<-scanDone
		return false
	}
}

func scanInto(r io.Reader, ch *Channel) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		ch.Send(scanner.Text())
	}
}
