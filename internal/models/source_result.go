package models

// SourceStatus represents the outcome of reconciling a single source
type SourceStatus interface {
	isSourceStatus()
}

type sourceStatusReconciled struct{}
type sourceStatusSkipped struct{ Reason string }
type sourceStatusFailed struct{ Error string }

func (sourceStatusReconciled) isSourceStatus() {}
func (sourceStatusSkipped) isSourceStatus()    {}
func (sourceStatusFailed) isSourceStatus()     {}

// Reconciled indicates both commit ranges were fetched and compared
var Reconciled SourceStatus = sourceStatusReconciled{}

// Skipped creates a SourceStatus for a source left out of the run
func Skipped(reason string) SourceStatus {
	return sourceStatusSkipped{Reason: reason}
}

// Failed creates a SourceStatus for a source whose queries failed
func Failed(err string) SourceStatus {
	return sourceStatusFailed{Error: err}
}

// SourceResult is the reconciliation outcome for one source
type SourceResult struct {
	Source       Source
	TargetBranch string
	SourceBranch string
	Status       SourceStatus
	// Tickets is the sorted reconciliation result, nil unless Reconciled
	Tickets []string
	// Err is the collaborator error behind a Failed status
	Err error
}

// IsStatusReconciled returns true if status is Reconciled
func IsStatusReconciled(s SourceStatus) bool {
	_, ok := s.(sourceStatusReconciled)
	return ok
}

// IsStatusSkipped returns true if status is Skipped
func IsStatusSkipped(s SourceStatus) bool {
	_, ok := s.(sourceStatusSkipped)
	return ok
}

// IsStatusFailed returns true if status is Failed
func IsStatusFailed(s SourceStatus) bool {
	_, ok := s.(sourceStatusFailed)
	return ok
}

// StatusName returns a lowercase name for the status
func StatusName(s SourceStatus) string {
	switch s.(type) {
	case sourceStatusReconciled:
		return "reconciled"
	case sourceStatusSkipped:
		return "skipped"
	case sourceStatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// GetStatusReason returns the reason string for Skipped or Failed statuses
func GetStatusReason(s SourceStatus) string {
	if skipped, ok := s.(sourceStatusSkipped); ok {
		return skipped.Reason
	}
	if failed, ok := s.(sourceStatusFailed); ok {
		return failed.Error
	}
	return ""
}
