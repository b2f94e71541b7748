// Package tui implements the render surface, input interpreter, and
// scheduler of spec §4.H/§4.I/§4.J as a single charmbracelet/bubbletea
// Elm-architecture model, the same split the teacher's model.go/
// handlers_*.go/render.go use for the Docker container list.
package tui

import (
	"context"
	"regexp"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rivermark/logview/internal/clipboardexport"
	"github.com/rivermark/logview/internal/crashlog"
	"github.com/rivermark/logview/internal/eps"
	"github.com/rivermark/logview/internal/history"
	"github.com/rivermark/logview/internal/ingest"
	"github.com/rivermark/logview/internal/logentry"
	"github.com/rivermark/logview/internal/parser"
	"github.com/rivermark/logview/internal/store"
	"github.com/rivermark/logview/internal/viewport"
)

// InputMode mirrors spec §3's ViewState.input_mode.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeFilter
	ModeSearch
	ModeHighlight
	ModeSavePrompt
	ModeTimeJump
)

// ViewMode mirrors spec §3's ViewState.view_mode.
type ViewMode int

const (
	ViewFeed ViewMode = iota
	ViewDetail
)

// tickInterval drives the scheduler's per-iteration work (ingest drain,
// history service, EPS/status advance). It stands in for spec §4.J's
// "≤50ms input poll" cadence — bubbletea delivers tea.KeyMsg
// asynchronously on its own reader, so this tick instead paces the other
// three scheduler responsibilities every iteration.
const tickInterval = 50 * time.Millisecond

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// highlightEntry pairs a compiled pattern with its raw text and the
// palette slot assigned when it was added.
type highlightEntry struct {
	raw        string
	pattern    *regexp.Regexp
	paletteIdx int
}

// PaletteSize is the fixed number of highlight colors (spec §6).
const PaletteSize = 4

// Model is the scheduler (§4.J): it owns the EntryStore and ViewState
// exclusively, drains the shared ingest channel, drives the parser
// registry, and delegates drawing to View().
type Model struct {
	registry  *parser.Registry
	forced    parser.Parser // non-nil if --format pinned a parser
	chosen    parser.Parser // resolved parser (forced or auto-detected)
	detecting bool
	samples   []string

	store *store.Store
	view  viewport.View

	ch        *ingest.Channel
	producers []ingest.Producer
	histSrc   history.Handle
	wantsHist bool

	meter  *eps.Meter
	status eps.Status

	searchText    string
	searchPattern *regexp.Regexp
	highlights    []highlightEntry
	nextPalette   int

	inputMode InputMode
	input     textinput.Model
	viewMode  ViewMode

	displayName string
	width       int
	height      int

	quitting bool
	ctx      context.Context
	cancel   context.CancelFunc
}

// New builds a Model over producers that all feed a freshly created
// ingest channel. format is "auto" or one of the registry's named
// parsers (spec §6 --format). parent bounds the producers' lifetime —
// canceling it (or quitting the program) stops every producer goroutine.
func New(producers []ingest.Producer, format, displayName string, parent context.Context) *Model {
	ctx, cancel := context.WithCancel(parent)
	reg := parser.NewRegistry()
	input := textinput.New()
	input.Prompt = ""
	m := &Model{
		registry:    reg,
		store:       store.New(),
		ch:          ingest.NewChannel(),
		producers:   producers,
		meter:       eps.New(time.Now()),
		displayName: displayName,
		input:       input,
		ctx:         ctx,
		cancel:      cancel,
	}
	if format != "" && format != "auto" {
		m.forced = reg.ByName(format)
		m.chosen = m.forced
	} else {
		m.detecting = true
	}
	for _, p := range producers {
		if h := p.History(); h != nil && m.histSrc == nil {
			m.histSrc = h
		}
	}
	return m
}

// Init launches every producer against the shared channel and starts the
// scheduler tick.
func (m *Model) Init() tea.Cmd {
	for _, p := range m.producers {
		prod := p
		crashlog.Go("producer:"+prod.DisplayName(), func() { prod.Run(m.ctx, m.ch) })
	}
	return tickCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.serviceHistory()
		if !m.view.Frozen {
			m.drainIngest()
		}
		now := time.Time(msg)
		m.meter.Tick(now)
		m.status.Expire(now)
		if m.quitting {
			return m, tea.Quit
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) View() string {
	return m.render()
}

// drainIngest pulls up to ingest.BatchDrain lines and appends each
// through the parser/store pipeline (spec §4.J step 4).
func (m *Model) drainIngest() {
	lines := m.ch.Drain(ingest.BatchDrain)
	if len(lines) == 0 {
		return
	}
	for _, line := range lines {
		m.ingestLine(line)
	}
	m.view.ClampSelected(m.view.VisibleCount(m.store))
}

// ingestLine resolves the active parser (sampling up to 20 lines first
// if auto-detection is in progress), parses line, and appends it.
func (m *Model) ingestLine(line string) {
	if m.detecting {
		m.samples = append(m.samples, line)
		if len(m.samples) < parser.MaxSamples() {
			return
		}
		m.resolveDetection()
	}
	m.appendParsed(line)
}

func (m *Model) resolveDetection() {
	m.chosen = m.registry.Detect(m.samples)
	m.detecting = false
	for _, s := range m.samples {
		m.appendParsed(s)
	}
	m.samples = nil
}

func (m *Model) appendParsed(line string) {
	p := m.chosen
	if p == nil {
		p = m.registry.Fallback()
	}
	entry := parser.Parse(p, line)
	result := m.store.Append(entry)
	if result.Appended {
		m.meter.RecordLine()
		if result.EvictedHead {
			m.view.ScrollHorizontal(0) // no-op hook kept for symmetry with spec §4.C's scroll-anchor note
		}
	}
}

// serviceHistory satisfies a pending prepend request synchronously
// (spec §4.J step 3): load one chunk, parse every line through the
// active parser, and prepend it as a batch.
func (m *Model) serviceHistory() {
	if !m.wantsHist || m.histSrc == nil {
		return
	}
	m.wantsHist = false
	if !m.histSrc.HasMore() {
		return
	}
	lines, err := m.histSrc.LoadChunk()
	if err != nil || len(lines) == 0 {
		return
	}
	p := m.chosen
	if p == nil {
		p = m.registry.Fallback()
	}
	batch := make([]logentry.Entry, len(lines))
	for i, l := range lines {
		batch[i] = parser.Parse(p, l)
	}
	n := m.store.Prepend(batch)
	m.view.Selected += n
}

// requestHistory marks a prepend as wanted; called whenever viewport
// motion hits the top of the visible set (spec §4.F).
func (m *Model) requestHistory() {
	if m.histSrc != nil && m.histSrc.HasMore() {
		m.wantsHist = true
	}
}

// copyEntry and saveVisible back the 'y' key and SavePrompt commit
// (spec §6); failures become status messages, never aborts.
func (m *Model) copyEntry() {
	idx := m.visibleStoreIndex(m.view.Selected)
	if idx < 0 {
		return
	}
	e := m.store.At(idx)
	if err := clipboardexport.Copy(e); err != nil {
		m.status.Set("copy failed: "+err.Error(), time.Now())
		return
	}
	m.status.Set("copied to clipboard", time.Now())
}

func (m *Model) saveVisible(path string) {
	entries := m.visibleEntries()
	if err := clipboardexport.WriteFile(path, entries); err != nil {
		m.status.Set("save failed: "+err.Error(), time.Now())
		return
	}
	m.status.Set("saved to "+path, time.Now())
}

func (m *Model) visibleEntries() []logentry.Entry {
	var out []logentry.Entry
	for i := 0; i < m.store.Len(); i++ {
		e := m.store.At(i)
		if m.view.Filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// visibleStoreIndex maps a visible ordinal back to a store index, or -1
// if ordinal is out of range.
func (m *Model) visibleStoreIndex(ordinal int) int {
	seen := 0
	for i := 0; i < m.store.Len(); i++ {
		if m.view.Filter.Matches(m.store.At(i)) {
			if seen == ordinal {
				return i
			}
			seen++
		}
	}
	return -1
}
