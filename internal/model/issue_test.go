package model

import "testing"

func TestValidationIssueIsFatal(t *testing.T) {
	tests := []struct {
		severity Severity
		fatal    bool
	}{
		{SeverityInfo, false},
		{SeverityWarning, false},
		{SeverityError, true},
		{SeverityCritical, true},
	}

	for _, tt := range tests {
		issue := ValidationIssue{Severity: tt.severity}
		if got := issue.IsFatal(); got != tt.fatal {
			t.Errorf("%s.IsFatal() = %v, want %v", tt.severity, got, tt.fatal)
		}
	}
}
