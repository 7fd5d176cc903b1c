// Package debug provides opt-in tracing for the planner's three
// symbolic subsystems (resource cache, component validation, and
// instruction execution). Unlike a flat "component tag" logger, each
// subsystem wrapper carries a model.Severity, and a package-level
// threshold decides what actually reaches the writer. A caller can ask
// for everything while debugging a failing Extract, or narrow down to
// Error and above when triaging a batch run without drowning in
// Info-level cache hits.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/OldRepublicDevs/kotormodsync/internal/model"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/OldRepublicDevs/kotormodsync/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// QuietMode suppresses all debug output regardless of EnableDebug, for
// callers that need clean stdout (e.g. machine-readable plan output).
var QuietMode = false

// debugOutput is the writer for debug output (defaults to nil, meaning no output)
var debugOutput io.Writer

// debugFile holds the open file handle if debug output goes to a file
var debugFile *os.File

// debugMutex protects access to debug output, minSeverity, and the
// catastrophic-message ring buffer.
var debugMutex sync.Mutex

// minSeverity is the lowest model.Severity LogCache/LogValidate/LogExec
// will emit. Defaults to SeverityInfo, i.e. everything passes once
// debug mode is on.
var minSeverity = model.SeverityInfo

// catastrophicRing holds the most recent CatastrophicError messages so
// a CLI entry point can surface them alongside a malformed-state exit
// code without re-reading the debug log file.
var catastrophicRing []string

const catastrophicRingCap = 10

// SetQuietMode suppresses all debug output regardless of EnableDebug or DEBUG.
func SetQuietMode(enabled bool) {
	QuietMode = enabled
}

// SetMinSeverity raises or lowers the floor for LogCache/LogValidate/LogExec.
// Passing model.SeverityWarning, for instance, drops routine Info-level
// cache/validate/exec traces while keeping Warning/Error/Critical ones.
func SetMinSeverity(sev model.Severity) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	minSeverity = sev
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile initializes debug logging to a file.
// Returns the path to the log file, or an error if initialization fails.
// Call CloseDebugLog when done to ensure the file is properly closed.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "kotormodsync-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		debugOutput = nil
		return err
	}
	return nil
}

// IsDebugEnabled returns true if debug mode is enabled and quiet mode isn't forcing silence.
func IsDebugEnabled() bool {
	if QuietMode {
		return false
	}

	if EnableDebug == "true" {
		return true
	}

	if os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true" {
		return true
	}

	return false
}

// getDebugWriter returns the writer for debug output, or nil if none is configured
func getDebugWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// severityRank orders model.Severity values for the minSeverity floor.
// Kept local to this package: model.Severity's ordering is meaningful
// to the issue log (IsFatal), but the trace-verbosity ordering here is
// a separate, debug-only concern.
func severityRank(sev model.Severity) int {
	switch sev {
	case model.SeverityCritical:
		return 3
	case model.SeverityError:
		return 2
	case model.SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG] "+format, args...)
}

// Println prints debug information only when debug mode is enabled and output is configured
func Println(args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprint(w, "[DEBUG] ")
	fmt.Fprintln(w, args...)
}

// Log provides structured debug logging with component names
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

// logAtSeverity is the shared body of LogCache/LogValidate/LogExec: it
// filters on minSeverity before falling through to Log, so a Trust
// downgrade (Info) can be silenced independently of a lock-contention
// retry (Warning) from the same subsystem.
func logAtSeverity(component string, sev model.Severity, format string, args ...interface{}) {
	debugMutex.Lock()
	floor := minSeverity
	debugMutex.Unlock()

	if severityRank(sev) < severityRank(floor) {
		return
	}
	Log(component, format, args...)
}

// LogCache traces resource cache and index activity (lookups, trust
// elevation, GC, eviction) at the given severity: Info for routine
// hits, Warning for lock contention or conflicting metadata, Error for
// persistence failures.
func LogCache(sev model.Severity, format string, args ...interface{}) {
	logAtSeverity("CACHE", sev, format, args...)
}

// LogValidate traces component validation and repair-pass decisions at
// the given severity: Info for a clean symbolic run, Warning/Error as
// repair passes are tried and exhausted.
func LogValidate(sev model.Severity, format string, args ...interface{}) {
	logAtSeverity("VALIDATE", sev, format, args...)
}

// LogExec traces instruction executor steps at the given severity,
// mirroring the severities the executor itself attaches to the issues
// it logs against a vfs.FileSystem.
func LogExec(sev model.Severity, format string, args ...interface{}) {
	logAtSeverity("EXEC", sev, format, args...)
}

// Fatal outputs a catastrophic error message to the debug log and returns a fatal error.
// This function does not call os.Exit - callers should handle the error appropriately.
// In quiet mode, output is suppressed entirely.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !QuietMode {
		w := getDebugWriter()
		if w != nil {
			fmt.Fprintf(w, "[FATAL] %s", msg)
		}
	}
	return fmt.Errorf("fatal error: %s", msg)
}

// FatalAndExit outputs a catastrophic error message and exits (for CLI use only).
// This should only be used in main.go or other CLI entry points.
func FatalAndExit(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !QuietMode {
		w := getDebugWriter()
		if w != nil {
			fmt.Fprintf(w, "[FATAL] %s", msg)
		}
	}
	os.Exit(1)
}

// CatastrophicError outputs an error that indicates system failure to
// the debug log and records it in a bounded ring buffer (see
// RecentCatastrophic) so a CLI entry point can report it even when no
// debug log file was opened for this run. In quiet mode, output to the
// writer is suppressed, but the message is still recorded.
func CatastrophicError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	debugMutex.Lock()
	catastrophicRing = append(catastrophicRing, msg)
	if len(catastrophicRing) > catastrophicRingCap {
		catastrophicRing = catastrophicRing[len(catastrophicRing)-catastrophicRingCap:]
	}
	debugMutex.Unlock()

	if !QuietMode {
		w := getDebugWriter()
		if w != nil {
			fmt.Fprintf(w, "[CATASTROPHIC] %s", msg)
		}
	}
}

// RecentCatastrophic returns the most recent CatastrophicError messages
// recorded this process, oldest first, up to catastrophicRingCap.
func RecentCatastrophic() []string {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	out := make([]string, len(catastrophicRing))
	copy(out, catastrophicRing)
	return out
}
