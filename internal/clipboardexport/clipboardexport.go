// Package clipboardexport implements the two one-shot export adapters spec
// §6 describes: copying an entry to the system clipboard and writing the
// visible set to a file. Both are out-of-process/best-effort calls that
// must never block the scheduler for long and must never panic; failures
// are returned as plain errors for the caller to surface through the
// status strip (spec §7).
package clipboardexport

import (
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/rivermark/logview/internal/logentry"
)

// EntryText renders an entry as raw plus each extra line, newline-joined —
// the exact payload spec §6 specifies for clipboard copy.
func EntryText(e logentry.Entry) string {
	if len(e.ExtraLines) == 0 {
		return e.Raw
	}
	var b strings.Builder
	b.WriteString(e.Raw)
	for _, extra := range e.ExtraLines {
		b.WriteByte('\n')
		b.WriteString(extra)
	}
	return b.String()
}

// Copy sends an entry's text to the system clipboard via atotto/clipboard.
// Failures (no clipboard utility available, headless CI, etc.) are
// returned rather than panicking so the caller can turn them into a status
// message instead of aborting the session.
func Copy(e logentry.Entry) error {
	return clipboard.WriteAll(EntryText(e))
}

// WriteFile exports entries to path in the format spec §6 mandates: one
// entry per block — raw line, then each extra line, each on its own line,
// no header and no trailing separator between entries.
func WriteFile(path string, entries []logentry.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, e := range entries {
		if _, err := f.WriteString(e.Raw); err != nil {
			return err
		}
		if _, err := f.WriteString("\n"); err != nil {
			return err
		}
		for _, extra := range e.ExtraLines {
			if _, err := f.WriteString(extra); err != nil {
				return err
			}
			if _, err := f.WriteString("\n"); err != nil {
				return err
			}
		}
	}
	return nil
}
