// Package levels classifies a text fragment into a log severity.
package levels

// Severity is a total order of log levels, plus Unknown which sorts
// outside the order and marks "no level detected".
type Severity int

const (
	Trace Severity = iota
	Debug
	Info
	Warn
	Error
	Fatal
	Unknown
)

func (s Severity) String() string {
	switch s {
	case Trace:
		return "TRACE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// tag pairs a set of case-insensitive substrings with the severity they map
// to. Order matters: higher severities are probed first so that, e.g., a
// line containing both "INFO" and "ERROR" classifies as Error.
type tag struct {
	sev      Severity
	matchers []string
}

var tags = []tag{
	{Fatal, []string{"FATAL", "EMERGENCY", "CRITICAL"}},
	{Error, []string{"ERROR", "ERR"}},
	{Warn, []string{"WARN", "WARNING"}},
	{Info, []string{"INFO"}},
	{Debug, []string{"DEBUG", "DBG"}},
	{Trace, []string{"TRACE"}},
}

// Classify returns the first matching severity in priority order
// (Fatal > Error > Warn > Info > Debug > Trace), scanning case-insensitively
// without allocating an uppercased copy. Returns Unknown if nothing matches.
func Classify(text string) Severity {
	for _, t := range tags {
		for _, m := range t.matchers {
			if containsFold(text, m) {
				return t.sev
			}
		}
	}
	return Unknown
}

// containsFold reports whether text contains substr, ASCII-case-insensitive,
// without allocating a copy of text.
func containsFold(text, substr string) bool {
	n, m := len(text), len(substr)
	if m == 0 {
		return true
	}
	if m > n {
		return false
	}
	for i := 0; i+m <= n; i++ {
		if equalFold(text[i:i+m], substr) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca == cb {
			continue
		}
		if upper(ca) != upper(cb) {
			return false
		}
	}
	return true
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// Less reports whether a is strictly less severe than b under the total
// order Trace < Debug < Info < Warn < Error < Fatal. Unknown never compares
// as less than anything and is never less-than by another severity; callers
// that need ordering semantics should special-case Unknown.
func Less(a, b Severity) bool {
	if a == Unknown || b == Unknown {
		return false
	}
	return a < b
}
