// Package viewport computes the filtered visible set over a store,
// answers viewport window queries, and drives cursor/search/time-jump
// motion (spec §4.F).
package viewport

import (
	"regexp"
	"sort"

	"github.com/rivermark/logview/internal/levels"
	"github.com/rivermark/logview/internal/logentry"
	"github.com/rivermark/logview/internal/store"
)

// Source is the minimal slice of store.Store the viewport needs, so it
// can be exercised against a fake in tests.
type Source interface {
	Len() int
	At(i int) logentry.Entry
}

var _ Source = (*store.Store)(nil)

// Filter holds the current visibility predicate: an optional error-only
// restriction and an optional compiled text pattern.
type Filter struct {
	ErrorOnly bool
	pattern   *regexp.Regexp
	raw       string
}

// SetPattern compiles text as a case-insensitive regex; on compile
// failure it retries with all metacharacters escaped, so arbitrary user
// text (an unbalanced paren, say) never leaves the filter box in an
// error state. An empty string clears the pattern.
func (f *Filter) SetPattern(text string) {
	f.raw = text
	if text == "" {
		f.pattern = nil
		return
	}
	re, err := regexp.Compile("(?i)" + text)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(text))
	}
	f.pattern = re
}

// Pattern returns the raw (uncompiled) pattern text last set.
func (f *Filter) Pattern() string { return f.raw }

// Matches reports whether e passes this filter (error-only plus the
// optional text pattern over raw text and extra lines).
func (f *Filter) Matches(e logentry.Entry) bool {
	return f.matches(e)
}

func (f *Filter) matches(e logentry.Entry) bool {
	if f.ErrorOnly && !isErrorLevel(e) {
		return false
	}
	if f.pattern == nil {
		return true
	}
	if f.pattern.MatchString(e.Raw) {
		return true
	}
	for _, extra := range e.ExtraLines {
		if f.pattern.MatchString(extra) {
			return true
		}
	}
	return false
}

func isErrorLevel(e logentry.Entry) bool {
	return e.Level == levels.Error || e.Level == levels.Fatal
}

// View computes the visible ordinals over src under f, and holds cursor
// state in terms of those ordinals.
type View struct {
	Filter   Filter
	Selected int // ordinal into the current visible set
	HScroll  int
	Frozen   bool
}

// visible returns the store indices (not ordinals) of entries currently
// passing the filter, oldest first.
func (v *View) visible(src Source) []int {
	var idx []int
	for i := 0; i < src.Len(); i++ {
		if v.Filter.matches(src.At(i)) {
			idx = append(idx, i)
		}
	}
	return idx
}

// VisibleCount returns the number of entries currently passing the
// filter.
func (v *View) VisibleCount(src Source) int {
	count := 0
	for i := 0; i < src.Len(); i++ {
		if v.Filter.matches(src.At(i)) {
			count++
		}
	}
	return count
}

// ClampSelected pulls Selected back into [0, visibleCount-1] (or 0 when
// empty), used after a filter change or an eviction shifts the set.
func (v *View) ClampSelected(visibleCount int) {
	if visibleCount == 0 {
		v.Selected = 0
		return
	}
	if v.Selected >= visibleCount {
		v.Selected = visibleCount - 1
	}
	if v.Selected < 0 {
		v.Selected = 0
	}
}

// Motion is a cursor movement applied by Move. Move reports whether the
// motion hit the start of the visible set, so the caller can request
// older history (the caller checks a separate "has more" handle before
// acting on this).
type Motion int

const (
	Down Motion = iota
	Up
	PageDown
	PageUp
	Home
	End
)

// const matching spec §4.F's ±50 page size.
const pageSize = 50

// HorizontalStep is the fixed horizontal-scroll increment (spec §6).
const HorizontalStep = 20

// Move applies a cursor motion over the current visible count, returning
// whether this motion hit the top of the set (a caller-visible signal to
// consider requesting history).
func (v *View) Move(motion Motion, visibleCount int) (hitTop bool) {
	if visibleCount == 0 {
		return false
	}
	switch motion {
	case Down:
		if v.Selected < visibleCount-1 {
			v.Selected++
		}
	case Up:
		if v.Selected > 0 {
			v.Selected--
		} else {
			hitTop = true
		}
	case PageDown:
		v.Selected += pageSize
		if v.Selected > visibleCount-1 {
			v.Selected = visibleCount - 1
		}
	case PageUp:
		v.Selected -= pageSize
		if v.Selected < 0 {
			v.Selected = 0
			hitTop = true
		}
	case Home:
		v.Selected = 0
		hitTop = true
	case End:
		v.Selected = visibleCount - 1
	}
	return hitTop
}

// ScrollHorizontal shifts horizontal scroll by delta characters, clamped
// at 0.
func (v *View) ScrollHorizontal(delta int) {
	v.HScroll += delta
	if v.HScroll < 0 {
		v.HScroll = 0
	}
}

// SearchNext moves the cursor to the next visible entry (cyclically,
// starting at Selected+1) whose raw text or any extra line matches
// pattern. It leaves the cursor untouched if nothing matches.
func (v *View) SearchNext(src Source, pattern *regexp.Regexp) bool {
	return v.search(src, pattern, 1)
}

// SearchPrev is SearchNext's mirror, starting at Selected-1 and scanning
// backward, wrapping.
func (v *View) SearchPrev(src Source, pattern *regexp.Regexp) bool {
	return v.search(src, pattern, -1)
}

func (v *View) search(src Source, pattern *regexp.Regexp, dir int) bool {
	if pattern == nil {
		return false
	}
	idx := v.visible(src)
	n := len(idx)
	if n == 0 {
		return false
	}
	for step := 1; step <= n; step++ {
		ord := ((v.Selected+dir*step)%n + n) % n
		if matchesPattern(src.At(idx[ord]), pattern) {
			v.Selected = ord
			return true
		}
	}
	return false
}

func matchesPattern(e logentry.Entry, pattern *regexp.Regexp) bool {
	if pattern.MatchString(e.Raw) {
		return true
	}
	for _, extra := range e.ExtraLines {
		if pattern.MatchString(extra) {
			return true
		}
	}
	return false
}

// JumpToTime scans the visible set in order for the first entry whose
// Timestamp (if present) or Raw contains text as a substring. On a hit
// it moves the cursor there and freezes the view so the live stream
// cannot drift the cursor away.
func (v *View) JumpToTime(src Source, text string) bool {
	if text == "" {
		return false
	}
	idx := v.visible(src)
	for ord, i := range idx {
		e := src.At(i)
		target := e.Raw
		if e.HasTimestamp {
			target = e.Timestamp
		}
		if containsSubstring(target, text) {
			v.Selected = ord
			v.Frozen = true
			return true
		}
	}
	return false
}

func containsSubstring(haystack, needle string) bool {
	return len(needle) == 0 || indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	n, m := len(haystack), len(needle)
	if m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if haystack[i:i+m] == needle {
			return i
		}
	}
	return -1
}

// Window computes [offset, end) into the visible set for a render area
// of height rows, per spec §4.F: center-ish around the cursor unless the
// stream is live and the cursor trails near the tail, in which case the
// window tracks the tail.
func Window(visibleCount, height, selected int, frozen bool) (offset, end int) {
	if visibleCount == 0 || height <= 0 {
		return 0, 0
	}
	if selected > visibleCount-1 {
		selected = visibleCount - 1
	}
	if frozen || selected < visibleCount-height {
		offset = selected - height/2
	} else {
		offset = visibleCount - height
	}
	if offset < 0 {
		offset = 0
	}
	end = offset + height + 1
	if end > visibleCount {
		end = visibleCount
	}
	return offset, end
}

// Span is a highlighted match range within a line of displayed text,
// paired with the palette index (or -1 for the active search pattern,
// which the render surface maps to an inverted style) that produced it.
type Span struct {
	Start, End int
	PaletteIdx int
}

// ComputeSpans collects match ranges for every highlight pattern (each
// tagged with its palette index) plus the active search pattern (tagged
// -1), sorts by (start, -end), and greedily discards any range that
// overlaps an already-accepted one. First match wins ties.
func ComputeSpans(text string, highlights []*regexp.Regexp, search *regexp.Regexp) []Span {
	var spans []Span
	for i, re := range highlights {
		if re == nil {
			continue
		}
		for _, m := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, Span{Start: m[0], End: m[1], PaletteIdx: i})
		}
	}
	if search != nil {
		for _, m := range search.FindAllStringIndex(text, -1) {
			spans = append(spans, Span{Start: m[0], End: m[1], PaletteIdx: -1})
		}
	}
	if len(spans) == 0 {
		return nil
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})
	out := spans[:0:0]
	for _, s := range spans {
		if len(out) == 0 || s.Start >= out[len(out)-1].End {
			out = append(out, s)
		}
	}
	return out
}
