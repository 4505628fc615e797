package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingExternalID rejects a booking without its channel-side id.
	ErrMissingExternalID = errors.New("missing external booking id")
	// ErrMissingStayDates rejects a booking without check-in or check-out.
	ErrMissingStayDates = errors.New("missing stay dates")
)

// RecordError is the failure of a single booking inside a batch.
// It is counted into the run log and never aborts the batch.
type RecordError struct {
	Channel    string
	ExternalID string
	// Index is the 1-based position of the record in its batch.
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	if e.ExternalID == "" {
		return fmt.Sprintf("reconcile %s record #%d: %v", e.Channel, e.Index, e.Err)
	}
	return fmt.Sprintf("reconcile %s booking %s: %v", e.Channel, e.ExternalID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// BatchFatalError is a failure before per-record processing started.
// RunLogID references the "error" run written for it, zero if that write failed too.
type BatchFatalError struct {
	Channel  string
	RunLogID uint
	Err      error
}

func (e *BatchFatalError) Error() string {
	return fmt.Sprintf("sync %s failed: %v", e.Channel, e.Err)
}

func (e *BatchFatalError) Unwrap() error {
	return e.Err
}
