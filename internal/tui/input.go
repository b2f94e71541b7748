package tui

import (
	"regexp"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rivermark/logview/internal/viewport"
)

// handleKey is the modal keymap of spec §4.H. Ctrl+C always forces quit,
// even inside text-entry modes.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	if m.viewMode == ViewDetail {
		switch msg.String() {
		case "esc", "q":
			m.viewMode = ViewFeed
		}
		return m, nil
	}

	switch m.inputMode {
	case ModeNormal:
		return m.handleNormalKey(msg)
	case ModeFilter:
		return m.handleFilterKey(msg)
	default:
		return m.handleBufferedModeKey(msg)
	}
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.cancel != nil {
		m.cancel()
	}
	return m, tea.Quit
}

func (m *Model) visibleCount() int { return m.view.VisibleCount(m.store) }

func (m *Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case " ":
		m.view.Frozen = !m.view.Frozen
	case "/":
		m.inputMode = ModeFilter
		m.view.Filter.SetPattern("")
		return m, m.resetInput()
	case "?":
		m.inputMode = ModeSearch
		return m, m.resetInput()
	case "*":
		m.inputMode = ModeHighlight
		return m, m.resetInput()
	case "s":
		m.inputMode = ModeSavePrompt
		return m, m.resetInput()
	case "g":
		m.inputMode = ModeTimeJump
		return m, m.resetInput()
	case "e":
		m.view.Filter.ErrorOnly = !m.view.Filter.ErrorOnly
		m.view.ClampSelected(m.visibleCount())
	case "enter":
		if m.visibleCount() > 0 {
			m.viewMode = ViewDetail
		}
	case "c":
		m.store.Clear()
		m.view.Selected = 0
		m.view.ScrollHorizontal(-m.view.HScroll)
	case "y":
		m.copyEntry()
	case "n":
		m.view.SearchNext(m.store, m.searchPattern)
	case "N":
		m.view.SearchPrev(m.store, m.searchPattern)
	case "j", "down":
		if m.view.Move(viewport.Down, m.visibleCount()) {
			m.requestHistory()
		}
	case "k", "up":
		if m.view.Move(viewport.Up, m.visibleCount()) {
			m.requestHistory()
		}
	case "h", "left":
		m.view.ScrollHorizontal(-viewport.HorizontalStep)
	case "l", "right":
		m.view.ScrollHorizontal(viewport.HorizontalStep)
	case "pgdown":
		if m.view.Move(viewport.PageDown, m.visibleCount()) {
			m.requestHistory()
		}
	case "pgup":
		if m.view.Move(viewport.PageUp, m.visibleCount()) {
			m.requestHistory()
		}
	case "home":
		m.view.Move(viewport.Home, m.visibleCount())
		m.requestHistory()
	case "end":
		m.view.Move(viewport.End, m.visibleCount())
	}
	return m, nil
}

// resetInput clears and focuses the shared text-entry field; only one
// of Filter/Search/Highlight/SavePrompt/TimeJump is ever active at a
// time, so one bubbles/textinput.Model backs all of them (spec §9's
// grapheme-safe editing requirement).
func (m *Model) resetInput() tea.Cmd {
	m.input.SetValue("")
	return m.input.Focus()
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.inputMode = ModeNormal
		m.input.Blur()
		m.view.ClampSelected(m.visibleCount())
		return m, nil
	case tea.KeyEsc:
		m.input.SetValue("")
		m.input.Blur()
		m.view.Filter.SetPattern("")
		m.inputMode = ModeNormal
		m.view.ClampSelected(m.visibleCount())
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.view.Filter.SetPattern(m.input.Value())
	m.view.ClampSelected(m.visibleCount())
	return m, cmd
}

// handleBufferedModeKey covers Search/Highlight/SavePrompt/TimeJump,
// which all edit the shared text field the same way and differ only in
// what happens on Enter (spec §4.H).
func (m *Model) handleBufferedModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.commitBufferedMode()
		m.inputMode = ModeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEsc:
		m.input.SetValue("")
		m.input.Blur()
		m.inputMode = ModeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) commitBufferedMode() {
	text := m.input.Value()
	switch m.inputMode {
	case ModeSearch:
		m.searchText = text
		m.searchPattern = compilePattern(m.searchText)
		m.view.SearchNext(m.store, m.searchPattern)
	case ModeHighlight:
		if text == "" {
			m.highlights = nil
			m.nextPalette = 0
			return
		}
		pat := compilePattern(text)
		m.highlights = append(m.highlights, highlightEntry{
			raw:        text,
			pattern:    pat,
			paletteIdx: m.nextPalette % PaletteSize,
		})
		m.nextPalette++
	case ModeSavePrompt:
		if text != "" {
			m.saveVisible(text)
		}
	case ModeTimeJump:
		m.view.JumpToTime(m.store, text)
	}
}

// compilePattern applies spec §4.F's regex-then-literal-escape fallback.
func compilePattern(text string) *regexp.Regexp {
	if text == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + text)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(text))
	}
	return re
}
