// Package errors defines the typed error hierarchy used across the
// planning core. Each failure domain gets its own struct implementing
// error/Unwrap, following the one-type-per-domain shape used
// throughout the rest of this module's ambient stack.
package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies the failure domain of a fatal or exceptional error.
type ErrorType string

const (
	ErrorTypeArchive    ErrorType = "archive"
	ErrorTypeWildcard   ErrorType = "wildcard"
	ErrorTypeCacheLock  ErrorType = "cache_lock"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInstall    ErrorType = "install"
	ErrorTypeValidation ErrorType = "validation"
)

// signal is the marker interface exceptional (non-fatal, locally
// recoverable) errors implement so a Validator can errors.As() them
// apart from fatal errors without inspecting strings.
type signal interface {
	Signal() string
}

// CorruptedArchiveError is raised by the archive inspector when the
// underlying reader reports a structurally broken archive (spec §4.2).
type CorruptedArchiveError struct {
	ArchivePath string
	Underlying  error
	Timestamp   time.Time
}

func NewCorruptedArchiveError(archivePath string, err error) *CorruptedArchiveError {
	return &CorruptedArchiveError{ArchivePath: archivePath, Underlying: err, Timestamp: time.Now()}
}

func (e *CorruptedArchiveError) Error() string {
	return fmt.Sprintf("corrupted archive %s: %v", e.ArchivePath, e.Underlying)
}

func (e *CorruptedArchiveError) Unwrap() error { return e.Underlying }
func (e *CorruptedArchiveError) Signal() string { return "CorruptedArchive" }

var _ signal = (*CorruptedArchiveError)(nil)

// WildcardPatternNotFoundError is raised when enumerate() cannot
// resolve one or more patterns against the VFS (spec §4.3). It is the
// only path-resolution condition that propagates as a signal rather
// than an issue, because the Validator's repair passes pivot on it.
type WildcardPatternNotFoundError struct {
	Patterns  []string
	Timestamp time.Time
}

func NewWildcardPatternNotFoundError(patterns []string) *WildcardPatternNotFoundError {
	cp := make([]string, len(patterns))
	copy(cp, patterns)
	return &WildcardPatternNotFoundError{Patterns: cp, Timestamp: time.Now()}
}

func (e *WildcardPatternNotFoundError) Error() string {
	return fmt.Sprintf("wildcard pattern(s) not found: %v", e.Patterns)
}

func (e *WildcardPatternNotFoundError) Signal() string { return "WildcardPatternNotFound" }

var _ signal = (*WildcardPatternNotFoundError)(nil)

// InstructionFailedError terminates a symbolic run when an instruction
// produces an Error or Critical ValidationIssue (spec §4.4).
type InstructionFailedError struct {
	InstructionIndex int
	InstructionID    string
	Reason           string
	Timestamp        time.Time
}

func NewInstructionFailedError(index int, instructionID, reason string) *InstructionFailedError {
	return &InstructionFailedError{InstructionIndex: index, InstructionID: instructionID, Reason: reason, Timestamp: time.Now()}
}

func (e *InstructionFailedError) Error() string {
	return fmt.Sprintf("instruction %d (%s) failed: %s", e.InstructionIndex, e.InstructionID, e.Reason)
}

func (e *InstructionFailedError) Signal() string { return "InstructionFailed" }

var _ signal = (*InstructionFailedError)(nil)

// CacheLockedError is raised when the resource index's cross-process
// file lock cannot be acquired (spec §4.7, §7).
type CacheLockedError struct {
	LockPath  string
	Timestamp time.Time
}

func NewCacheLockedError(lockPath string) *CacheLockedError {
	return &CacheLockedError{LockPath: lockPath, Timestamp: time.Now()}
}

func (e *CacheLockedError) Error() string {
	return fmt.Sprintf("cache lock %s held by another process", e.LockPath)
}

func (e *CacheLockedError) Signal() string { return "CacheLocked" }

var _ signal = (*CacheLockedError)(nil)

// ConfigError represents a malformed-configuration fatal error.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %q): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

// MultiError aggregates independent errors, e.g. from parallel URL
// resolution across a component's mod links (spec §5).
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error { return e.Errors }
