package ingest

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rivermark/logview/internal/history"
)

// FileProducer tails a local file from the end, pre-seeding the last
// TailSeed lines, then following writes via fsnotify and recovering from
// rotation/truncation — grounded in the watcher.Watcher shape
// (Start/Stop/Events over fsnotify) used by the pack's file-tailing repo.
type FileProducer struct {
	path string
	hist *history.FileHandle
	id   string
}

// NewFileProducer opens path for tailing. The returned producer's
// History handle walks backward from the tail-seed boundary so replayed
// history never overlaps the pre-seeded lines.
func NewFileProducer(path string) (*FileProducer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	f.Close()

	seedStart := seedBoundary(path, info.Size())
	hist, err := history.Open(path, seedStart)
	if err != nil {
		return nil, err
	}
	return &FileProducer{path: path, hist: hist, id: newProducerID()}, nil
}

func (p *FileProducer) DisplayName() string      { return p.path }
func (p *FileProducer) History() history.Handle  { return p.hist }

// seedBoundary returns the byte offset TailSeed lines before the end of
// the file, by reusing the history reader one chunk at a time; this is
// the boundary both the live tail and the lazy history handle treat as
// "the start of the pre-seeded window".
func seedBoundary(path string, size int64) int64 {
	h, err := history.Open(path, -1)
	if err != nil {
		return size
	}
	defer h.Close()

	collected := 0
	for collected < TailSeed && h.HasMore() {
		chunk, err := h.LoadChunk()
		if err != nil {
			break
		}
		collected += len(chunk)
	}
	return h.Pos()
}

// Run seeds ch with the last TailSeed lines, then follows new writes to
// the file via fsnotify, re-opening on rename/truncate (log rotation)
// with the teacher-adjacent reconnect schedule.
func (p *FileProducer) Run(ctx context.Context, ch *Channel) {
	f, err := os.Open(p.path)
	if err != nil {
		ch.Send(statusLine(p.id, "cannot open %s: %v", p.path, err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		ch.Send(statusLine(p.id, "cannot stat %s: %v", p.path, err))
		return
	}

	seedStart := seedBoundary(p.path, info.Size())
	if _, err := f.Seek(seedStart, io.SeekStart); err == nil {
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1<<20)
		for scanner.Scan() {
			ch.Send(scanner.Text())
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		ch.Send(statusLine(p.id, "cannot watch %s: %v", p.path, err))
		return
	}
	defer watcher.Close()
	if err := watcher.Add(p.path); err != nil {
		ch.Send(statusLine(p.id, "cannot watch %s: %v", p.path, err))
		return
	}

	reader := bufio.NewReader(f)
	deadline := time.Now().Add(ReconnectCap)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if !p.reopen(ctx, ch, watcher, &f, &reader, &deadline) {
					return
				}
				continue
			}
			if ev.Op&fsnotify.Write != 0 {
				p.drainLines(reader, ch)
				if truncated(f) {
					if !p.reopen(ctx, ch, watcher, &f, &reader, &deadline) {
						return
					}
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			ch.Send(statusLine(p.id, "watch error on %s: %v", p.path, err))
		}
	}
}

func (p *FileProducer) drainLines(reader *bufio.Reader, ch *Channel) {
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			ch.Send(trimNewline(line))
		}
		if err != nil {
			return
		}
	}
}

func truncated(f *os.File) bool {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Size() < pos
}

// reopen handles rotation/truncation: it injects a synthetic status
// line, retries opening the file on a fixed schedule up to ReconnectCap,
// and resubscribes the watcher on success.
func (p *FileProducer) reopen(ctx context.Context, ch *Channel, watcher *fsnotify.Watcher, f **os.File, reader **bufio.Reader, deadline *time.Time) bool {
	ch.Send(statusLine(p.id, "%s rotated, reconnecting…", p.path))
	(*f).Close()
	*deadline = time.Now().Add(ReconnectCap)

	for {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if time.Now().After(*deadline) {
			ch.Send(statusLine(p.id, "%s: giving up after %s", p.path, ReconnectCap))
			return false
		}
		nf, err := os.Open(p.path)
		if err == nil {
			*f = nf
			*reader = bufio.NewReader(nf)
			watcher.Add(p.path)
			*deadline = time.Now().Add(ReconnectCap)
			return true
		}
		time.Sleep(ReconnectInterval)
	}
}

func trimNewline(s string) string {
	n := len(s)
	if n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
