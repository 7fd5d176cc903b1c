package model

import "time"

// Severity is the severity of a ValidationIssue (spec §3).
type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityWarning  Severity = "Warning"
	SeverityError    Severity = "Error"
	SeverityCritical Severity = "Critical"
)

// IssueCategory names the operation that produced the issue.
type IssueCategory string

const (
	CategoryExtractArchive     IssueCategory = "ExtractArchive"
	CategoryMoveFile           IssueCategory = "MoveFile"
	CategoryCopyFile           IssueCategory = "CopyFile"
	CategoryDeleteFile         IssueCategory = "DeleteFile"
	CategoryRenameFile         IssueCategory = "RenameFile"
	CategoryPatcher            IssueCategory = "Patcher"
	CategoryExecute            IssueCategory = "Execute"
	CategoryDependencyConflict IssueCategory = "DependencyConflict"
	CategoryPathMismatch       IssueCategory = "PathMismatch"
	CategoryChoose             IssueCategory = "Choose"
)

// ValidationIssue is a non-fatal finding logged by a symbolic
// operation (spec §3, §7 channel 1). The issue log is append-only
// within a run.
type ValidationIssue struct {
	Severity  Severity
	Category  IssueCategory
	Message   string
	Timestamp time.Time

	// Optional affected-entity references.
	ComponentID    ID
	InstructionID  ID
	InstructionIdx int
}

// IsFatal reports whether the issue should terminate a symbolic run
// (Error or Critical, spec §4.4).
func (v ValidationIssue) IsFatal() bool {
	return v.Severity == SeverityError || v.Severity == SeverityCritical
}
