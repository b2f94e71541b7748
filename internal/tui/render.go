package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"

	"github.com/rivermark/logview/internal/eps"
	"github.com/rivermark/logview/internal/logentry"
	"github.com/rivermark/logview/internal/viewport"
)

// render is the single entrypoint bubbletea's View() delegates to: header,
// feed-or-detail body, footer, with any active text-entry mode or status
// drawn into the footer (spec §4.I).
func (m *Model) render() string {
	if m.height <= 0 {
		return ""
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := m.height - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	if m.viewMode == ViewDetail {
		body = m.renderDetail()
	} else {
		body = m.renderFeed(bodyHeight)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderHeader() string {
	name := m.displayName
	if name == "" {
		name = "logview"
	}
	flags := ""
	if m.view.Frozen {
		flags += " [frozen]"
	}
	if m.view.Filter.ErrorOnly {
		flags += " [errors-only]"
	}
	stats := fmt.Sprintf("total=%d errors=%d eps=%d%s", m.store.TotalCount(), m.store.ErrorCount(), m.meter.Current(), flags)
	spark := sparkline(m.meter.History())
	return headerStyle.Render(fmt.Sprintf("%s  %s  %s", name, stats, spark))
}

var sparkBlocks = [...]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// sparkline renders the 60-sample EPS window as a single line of block
// characters scaled to the window's own maximum (spec §4.I).
func sparkline(history [eps.WindowSize]uint64) string {
	var max uint64
	for _, v := range history {
		if v > max {
			max = v
		}
	}
	var b strings.Builder
	for _, v := range history {
		if max == 0 {
			b.WriteRune(sparkBlocks[0])
			continue
		}
		idx := int(v * uint64(len(sparkBlocks)-1) / max)
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// renderFeed draws the viewport window: exactly the rows spec §4.F says
// to materialize, never the whole visible set.
func (m *Model) renderFeed(height int) string {
	idx := m.visibleIndices()
	offset, end := viewport.Window(len(idx), height, m.view.Selected, m.view.Frozen)

	var lines []string
	for ord := offset; ord < end && ord < len(idx); ord++ {
		e := m.store.At(idx[ord])
		lines = append(lines, m.renderRow(e, ord == m.view.Selected))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// visibleIndices returns store indices of entries passing the current
// filter, oldest first.
func (m *Model) visibleIndices() []int {
	var out []int
	for i := 0; i < m.store.Len(); i++ {
		if m.view.Filter.Matches(m.store.At(i)) {
			out = append(out, i)
		}
	}
	return out
}

func (m *Model) renderRow(e logentry.Entry, selected bool) string {
	text := e.Raw
	if m.view.HScroll > 0 {
		r := []rune(text)
		if m.view.HScroll < len(r) {
			text = string(r[m.view.HScroll:])
		} else {
			text = ""
		}
	}

	patterns := make([]*regexp.Regexp, len(m.highlights))
	for i, h := range m.highlights {
		patterns[i] = h.pattern
	}
	spans := viewport.ComputeSpans(text, patterns, m.searchPattern)
	row := m.applySpans(text, spans)

	lvl := e.Level.String()
	tag := lipgloss.NewStyle().Foreground(lipgloss.Color(levelColor(lvl))).Render(fmt.Sprintf("%-5s", lvl))
	suffix := ""
	if len(e.ExtraLines) > 0 {
		suffix = fmt.Sprintf(" [+%d lines]", len(e.ExtraLines))
	}
	line := fmt.Sprintf("%s %s%s", tag, row, suffix)
	if selected {
		return selectedRowStyle.Render(line)
	}
	return line
}

// applySpans wraps each highlighted span in its palette color (or the
// reversed search style for PaletteIdx == -1), leaving unmatched text
// untouched.
func (m *Model) applySpans(text string, spans []viewport.Span) string {
	if len(spans) == 0 {
		return text
	}
	r := []rune(text)
	var b strings.Builder
	pos := 0
	for _, s := range spans {
		if s.Start > len(r) {
			break
		}
		end := s.End
		if end > len(r) {
			end = len(r)
		}
		if s.Start < pos {
			continue
		}
		b.WriteString(string(r[pos:s.Start]))
		chunk := string(r[s.Start:end])
		if s.PaletteIdx < 0 {
			b.WriteString(searchMatchStyle.Render(chunk))
		} else {
			style := lipgloss.NewStyle().Background(lipgloss.Color(highlightPalette[s.PaletteIdx%PaletteSize]))
			b.WriteString(style.Render(chunk))
		}
		pos = end
	}
	if pos < len(r) {
		b.WriteString(string(r[pos:]))
	}
	return b.String()
}

// renderFooter draws the active text-entry prompt (if any) or the status
// message, per spec §4.H/§4.I.
func (m *Model) renderFooter() string {
	if prompt, ok := m.modePrompt(); ok {
		return footerStyle.Render(prompt + m.input.View())
	}
	if msg, ok := m.status.Message(); ok {
		if strings.HasPrefix(msg, "copy failed") || strings.HasPrefix(msg, "save failed") {
			return statusErrorStyle.Render(msg)
		}
		return statusOKStyle.Render(msg)
	}
	return footerStyle.Render("q quit  / filter  ? search  * highlight  e errors  s save  y copy  g time-jump  space freeze")
}

func (m *Model) modePrompt() (string, bool) {
	switch m.inputMode {
	case ModeFilter:
		return "filter: ", true
	case ModeSearch:
		return "search: ", true
	case ModeHighlight:
		return "highlight: ", true
	case ModeSavePrompt:
		return "save to: ", true
	case ModeTimeJump:
		return "jump to time/text: ", true
	default:
		return "", false
	}
}

// renderDetail draws the full record for the selected entry: the
// structured fields that are present, then Raw, then any continuation
// lines. Metadata and Raw are pretty-printed via gjson when they parse as
// JSON (spec §4.I).
func (m *Model) renderDetail() string {
	idx := m.visibleStoreIndex(m.view.Selected)
	if idx < 0 {
		return "(no entry selected)"
	}
	e := m.store.At(idx)

	var b strings.Builder
	if e.HasTimestamp {
		fmt.Fprintf(&b, "Timestamp: %s\n", e.Timestamp)
	}
	fmt.Fprintf(&b, "Level:     %s\n", e.Level.String())
	if e.HasMessage {
		fmt.Fprintf(&b, "Message:   %s\n", e.Message)
	}
	if e.HasMetadata {
		b.WriteString("Metadata:\n")
		if gjson.Valid(e.Metadata) {
			b.WriteString(prettyJSON(e.Metadata))
		} else {
			fmt.Fprintf(&b, "  %s\n", e.Metadata)
		}
	}
	b.WriteString("Raw:\n")
	if gjson.Valid(e.Raw) {
		b.WriteString(prettyJSON(e.Raw))
	} else {
		fmt.Fprintf(&b, "  %s\n", e.Raw)
	}
	for _, extra := range e.ExtraLines {
		fmt.Fprintf(&b, "  %s\n", extra)
	}
	return b.String()
}

// prettyJSON reformats raw JSON via gjson's @pretty modifier, without
// decoding it into a struct. (The parser registry's JSON parser extracts
// fields with regexp instead.)
func prettyJSON(raw string) string {
	return gjson.Get(raw, "@pretty").String()
}
