// Package parser implements the pluggable log-line parser registry
// described in spec §4.B: a fixed probe order of format-specific parsers,
// a confidence-scored auto-detection protocol, and a fallback parser that
// always accepts.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rivermark/logview/internal/levels"
	"github.com/rivermark/logview/internal/logentry"
)

// Parser is a pure, thread-safe log-line format.
type Parser interface {
	// Name is a stable display name (e.g. "JSON", "Laravel").
	Name() string
	// CanParse reports whether this parser recognizes line's shape.
	CanParse(line string) bool
	// Parse extracts a structured Entry from line. Implementations must
	// never panic; on extraction failure they degrade to the fallback
	// result for that line.
	Parse(line string) logentry.Entry
}

// Fallback always accepts; it fills Raw, Message=Raw, and derives Level via
// the shared classifier.
type Fallback struct{}

func (Fallback) Name() string          { return "Plain" }
func (Fallback) CanParse(string) bool  { return true }
func (Fallback) Parse(line string) logentry.Entry {
	return fallbackParse(line)
}

func fallbackParse(line string) logentry.Entry {
	return logentry.Entry{
		Raw:   line,
		Level: levels.Classify(line),
	}.WithMessage(line)
}

// --- JSON ---

var (
	jsonLevelRE = regexp.MustCompile(`(?i)"(?:level|severity|lvl)"\s*:\s*"([^"]+)"`)
	jsonMsgRE   = regexp.MustCompile(`(?i)"(?:msg|message|text)"\s*:\s*"([^"]*)"`)
)

// JSON parses single-line JSON log records, extracting level/severity/lvl
// and msg/message/text via regex capture rather than a full decode (the
// field may be one of several aliases and the line need not be
// well-formed JSON to still carry a usable level/message pair).
type JSON struct{}

func (JSON) Name() string { return "JSON" }

func (JSON) CanParse(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}")
}

func (JSON) Parse(line string) logentry.Entry {
	e := logentry.Entry{Raw: line}
	if m := jsonLevelRE.FindStringSubmatch(line); m != nil {
		e.Level = levels.Classify(m[1])
	} else {
		e.Level = levels.Classify(line)
	}
	if m := jsonMsgRE.FindStringSubmatch(line); m != nil {
		e = e.WithMessage(m[1])
	}
	e = e.WithMetadata(line)
	return e
}

// --- Laravel ---

var laravelRE = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2})\]\s+\w+\.(\w+):\s+(.*)$`)

// Laravel parses `[YYYY-MM-DD HH:MM:SS] env.LEVEL: message`.
type Laravel struct{}

func (Laravel) Name() string         { return "Laravel" }
func (Laravel) CanParse(l string) bool { return laravelRE.MatchString(l) }

func (Laravel) Parse(line string) logentry.Entry {
	m := laravelRE.FindStringSubmatch(line)
	if m == nil {
		return fallbackParse(line)
	}
	e := logentry.Entry{Raw: line, Level: levels.Classify(m[2])}
	e = e.WithTimestamp(m[1])
	e = e.WithMessage(m[3])
	return e
}

// --- Django ---

var djangoRE = regexp.MustCompile(`^\[(\d{2}/\w+/\d{4}\s\d{2}:\d{2}:\d{2})\]\s+(\w+)\s+\[([^\]]+)\]\s+(.*)$`)

// Django parses `[DD/Mon/YYYY HH:MM:SS] LEVEL [logger] message`.
type Django struct{}

func (Django) Name() string         { return "Django" }
func (Django) CanParse(l string) bool { return djangoRE.MatchString(l) }

func (Django) Parse(line string) logentry.Entry {
	m := djangoRE.FindStringSubmatch(line)
	if m == nil {
		return fallbackParse(line)
	}
	e := logentry.Entry{Raw: line, Level: levels.Classify(m[2])}
	e = e.WithTimestamp(m[1])
	e = e.WithMetadata(m[3])
	e = e.WithMessage(m[4])
	return e
}

// --- Structured (slog-style or standard Go log package output) ---

var (
	structuredRE = regexp.MustCompile(`^time=(\S+)\s+level=(\w+)\s+(?:source=\S+\s+)?msg=(.*)$`)
	stdStreamRE  = regexp.MustCompile(`^(\d{4}/\d{2}/\d{2}\s\d{2}:\d{2}:\d{2})\s+(.*)$`)
)

// Structured parses `time=VAL level=VAL [source=VAL] msg=REST` or
// `YYYY/MM/DD HH:MM:SS REST`.
type Structured struct{}

func (Structured) Name() string { return "Structured" }

func (Structured) CanParse(line string) bool {
	return structuredRE.MatchString(line) || stdStreamRE.MatchString(line)
}

func (Structured) Parse(line string) logentry.Entry {
	if m := structuredRE.FindStringSubmatch(line); m != nil {
		e := logentry.Entry{Raw: line, Level: levels.Classify(m[2])}
		e = e.WithTimestamp(m[1])
		e = e.WithMessage(m[3])
		return e
	}
	if m := stdStreamRE.FindStringSubmatch(line); m != nil {
		// The source this format is derived from reuses the timestamp's
		// match position for both timestamp and message, making message
		// equal the timestamp — a documented source bug (spec §9 open
		// question). We assign message to the text after the timestamp.
		e := logentry.Entry{Raw: line, Level: levels.Classify(m[2])}
		e = e.WithTimestamp(m[1])
		e = e.WithMessage(m[2])
		return e
	}
	return fallbackParse(line)
}

// --- Combined access log ---

var accessLogRE = regexp.MustCompile(`^(\S+)\s+\S+\s+\S+\s+\[([^\]]+)\]\s+"([^"]+)"\s+(\d{3})\s+(\d+)`)

// AccessLog parses the combined access log format:
// `HOST - - [TS] "REQUEST" STATUS SIZE`.
type AccessLog struct{}

func (AccessLog) Name() string         { return "Combined" }
func (AccessLog) CanParse(l string) bool { return accessLogRE.MatchString(l) }

func (AccessLog) Parse(line string) logentry.Entry {
	m := accessLogRE.FindStringSubmatch(line)
	if m == nil {
		return fallbackParse(line)
	}
	status, err := strconv.Atoi(m[4])
	if err != nil {
		return fallbackParse(line)
	}
	var lvl levels.Severity
	switch {
	case status >= 200 && status < 300:
		lvl = levels.Info
	case status >= 300 && status < 400:
		lvl = levels.Debug
	case status >= 400 && status < 500:
		lvl = levels.Warn
	case status >= 500 && status < 600:
		lvl = levels.Error
	default:
		lvl = levels.Unknown
	}
	e := logentry.Entry{Raw: line, Level: lvl}
	e = e.WithTimestamp(m[2])
	e = e.WithMetadata(m[1])
	e = e.WithMessage(fmt.Sprintf("%s -> %d", m[3], status))
	return e
}

// Registry holds the fixed probe order of built-in parsers.
type Registry struct {
	parsers  []Parser
	fallback Parser
}

// NewRegistry builds the registry with the five built-in parsers in their
// fixed auto-detection probe order, plus the always-accepting fallback.
func NewRegistry() *Registry {
	return &Registry{
		parsers: []Parser{
			JSON{},
			Laravel{},
			Django{},
			Structured{},
			AccessLog{},
		},
		fallback: Fallback{},
	}
}

// Fallback returns the registry's fallback parser.
func (r *Registry) Fallback() Parser { return r.fallback }

// ByName resolves a parser by the CLI --format name, or nil for unknown /
// "auto" (auto is resolved by Detect instead).
func (r *Registry) ByName(name string) Parser {
	switch strings.ToLower(name) {
	case "json":
		return JSON{}
	case "laravel":
		return Laravel{}
	case "django":
		return Django{}
	case "go":
		return Structured{}
	case "nginx":
		return AccessLog{}
	case "plain":
		return Fallback{}
	default:
		return nil
	}
}

// maxSamples bounds the number of lines Detect considers (spec §6).
const maxSamples = 20

// MaxSamples exposes the sample cap to callers (the scheduler) that need
// to know how many raw lines to buffer before calling Detect.
func MaxSamples() int { return maxSamples }

// Detect scores each built-in parser's CanParse over up to 20 sample lines
// and returns the strictly-highest scorer. An all-zero score resolves to the
// fallback; ties above zero resolve to the earlier parser in probe order
// because the loop only replaces best on a strict improvement.
func (r *Registry) Detect(samples []string) Parser {
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	var best Parser
	bestScore := 0
	for _, p := range r.parsers {
		score := 0
		for _, line := range samples {
			if p.CanParse(line) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = p
		}
	}
	if bestScore == 0 {
		return r.fallback
	}
	return best
}

// Parse is a safety-netted call to p.Parse(line): if a parser panics,
// execution degrades to fallback parsing of that one line rather than
// taking down the ingest loop. Built-in parsers never panic themselves;
// this guards against future/third-party Parser implementations.
func Parse(p Parser, line string) (entry logentry.Entry) {
	defer func() {
		if recover() != nil {
			entry = fallbackParse(line)
		}
	}()
	return p.Parse(line)
}
