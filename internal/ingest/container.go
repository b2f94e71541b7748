package ingest

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/rivermark/logview/internal/history"
)

// ContainerProducer tails `docker logs -f` for a single running
// container via the Docker Engine API client, demultiplexing the
// stdout/stderr frame stream with stdcopy the way the teacher's
// LogBroker does by hand in streamContainer, but through the client
// library's own demuxer instead of re-deriving the frame format.
type ContainerProducer struct {
	cli         *client.Client
	containerID string
	name        string
	fetchedOnce bool
	id          string
}

// NewContainerProducer returns a producer streaming containerID's logs
// through cli, displayed under name (the container's trimmed name).
func NewContainerProducer(cli *client.Client, containerID, name string) *ContainerProducer {
	return &ContainerProducer{cli: cli, containerID: containerID, name: name, id: newProducerID()}
}

func (p *ContainerProducer) DisplayName() string     { return p.name }
func (p *ContainerProducer) History() history.Handle { return nil }

// Run streams the container's logs, pre-seeding TailSeed lines on first
// connection and reconnecting on a fixed schedule if the stream breaks
// (container restart, daemon hiccup) per spec §4.D/§7.
func (p *ContainerProducer) Run(ctx context.Context, ch *Channel) {
	deadline := time.Now().Add(ReconnectCap)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if p.fetchedOnce && time.Now().After(deadline) {
			ch.Send(statusLine(p.id, "%s: giving up after %s", p.name, ReconnectCap))
			return
		}

		clean := p.streamOnce(ctx, ch)
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

func (p *ContainerProducer) streamOnce(ctx context.Context, ch *Channel) bool {
	tail := "0"
	if !p.fetchedOnce {
		tail = strconv.Itoa(TailSeed)
	}

	reader, err := p.cli.ContainerLogs(ctx, p.containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Tail:       tail,
	})
	if err != nil {
		ch.Send(statusLine(p.id, "%s: %v", p.name, err))
		return false
	}
	defer reader.Close()
	p.fetchedOnce = true

	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	demuxDone := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(outW, errW, reader)
		outW.CloseWithError(err)
		errW.CloseWithError(err)
		demuxDone <- err
	}()

	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		done := make(chan struct{}, 2)
		go func() { scanInto(outR, ch); done <- struct{}{} }()
		go func() { scanInto(errR, ch); done <- struct{}{} }()
		<-done
		<-done
	}()

	select {
	case <-ctx.Done():
		return true
	case <-demuxDone:
		<-scanDone
		return false
	}
}
