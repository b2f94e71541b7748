// Package crashlog writes panic reports to disk and wraps goroutine launch
// with panic recovery, adapted from the teacher's crashlog.go so a crash in
// a producer goroutine never takes down the whole program silently.
package crashlog

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"
)

// DefaultPath is where crash reports are appended when no other path is
// configured.
const DefaultPath = "/tmp/logview-crash.log"

// Path is the file crash reports are appended to. Tests may override it.
var Path = DefaultPath

// Write appends a crash report for r (the recovered panic value) tagged
// with goroutineName to Path, falling back to stderr if the file can't be
// opened. A nil r is a no-op so callers can defer Write(recover(), ...)
// unconditionally.
func Write(r interface{}, goroutineName string) {
	if r == nil {
		return
	}

	f, err := os.OpenFile(Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open crash log: %v\n", err)
		f = os.Stderr
	}
	defer f.Close()

	fmt.Fprintf(f, "\n\n")
	fmt.Fprintf(f, "=== CRASH REPORT - %s ===\n\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if goroutineName == "" {
		goroutineName = "main"
	}
	fmt.Fprintf(f, "Goroutine: %s\n\n", goroutineName)
	fmt.Fprintf(f, "Error: %v\n\n", r)

	fmt.Fprintf(f, "Crashing goroutine stack:\n")
	f.Write(debug.Stack())
	fmt.Fprintf(f, "\n")

	fmt.Fprintf(f, "All goroutines:\n")
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	f.Write(buf[:n])
	fmt.Fprintf(f, "\n")

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fmt.Fprintf(f, "Goroutines: %d   Alloc: %dMB   Sys: %dMB   GC runs: %d\n",
		runtime.NumGoroutine(), mem.Alloc/1024/1024, mem.Sys/1024/1024, mem.NumGC)

	if f != os.Stderr {
		fmt.Fprintf(os.Stderr, "fatal error in %s: %v (crash log: %s)\n", goroutineName, r, Path)
	}
}

// Go launches fn in a new goroutine, recovering any panic into a crash
// report tagged with name instead of letting it take down the process.
// The scheduler launches every producer's Run (spec §4.D) through this;
// the program entrypoint instead recovers into Write with its own defer.
func Go(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				Write(r, name)
			}
		}()
		fn()
	}()
}

// watchdog thresholds for the soft goroutine-count warning (spec_full's
// narrowed version of the teacher's panic-on-10000 monitor: this repo's
// producer count is small and bounded, so a log line is enough).
const warnGoroutines = 500

// WatchGoroutines starts a best-effort background watchdog that logs a
// warning line to stderr if the goroutine count climbs unexpectedly high,
// which would indicate a producer reconnect loop failing to terminate.
// It never panics or exits the process.
func WatchGoroutines(interval time.Duration, stop <-chan struct{}) {
	Go("goroutine-watchdog", func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if n := runtime.NumGoroutine(); n > warnGoroutines {
					fmt.Fprintf(os.Stderr, "warning: goroutine count is %d\n", n)
				}
			}
		}
	})
}
