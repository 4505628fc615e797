package booking

import (
	"fmt"
	"strings"
	"time"
)

// SyncType identifies what a sync run moved.
type SyncType string

const (
	SyncTypeBookings     SyncType = "bookings"
	SyncTypeAvailability SyncType = "availability"
	SyncTypeRates        SyncType = "rates"
)

// RunStatus is the outcome of a sync run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusPartial RunStatus = "partial"
	RunStatusError   RunStatus = "error"
)

// SyncRunLog is one immutable audit record per reconciliation batch or push attempt.
type SyncRunLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ChannelID        uint      `gorm:"index" json:"channel_id"`
	ChannelName      string    `gorm:"size:50;not null;index" json:"channel_name"`
	SyncType         SyncType  `gorm:"size:20;not null" json:"sync_type"`
	Status           RunStatus `gorm:"size:20;not null" json:"status"`
	RecordsProcessed int       `json:"records_processed"`
	RecordsSuccess   int       `json:"records_success"`
	RecordsFailed    int       `json:"records_failed"`
	ErrorMessage     string    `gorm:"type:text" json:"error_message,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      time.Time `json:"completed_at"`
	DurationSeconds  float64   `json:"duration_seconds"`
}

// TableName pins the table name independent of the naming strategy.
func (SyncRunLog) TableName() string {
	return "sync_run_logs"
}

// RunRecorder accumulates the outcome of one run. It is not safe for
// concurrent use; a run processes its records sequentially.
type RunRecorder struct {
	log    SyncRunLog
	errs   []string
	closed bool
}

// StartRun begins recording a run.
func StartRun(channelID uint, channelName string, syncType SyncType, startedAt time.Time) *RunRecorder {
	return &RunRecorder{
		log: SyncRunLog{
			ChannelID:   channelID,
			ChannelName: channelName,
			SyncType:    syncType,
			StartedAt:   startedAt,
		},
	}
}

// Success counts one successfully processed record.
func (r *RunRecorder) Success() {
	r.log.RecordsProcessed++
	r.log.RecordsSuccess++
}

// Failure counts one failed record. ref identifies the record in the error message.
func (r *RunRecorder) Failure(ref string, err error) {
	r.log.RecordsProcessed++
	r.log.RecordsFailed++
	if ref == "" {
		ref = fmt.Sprintf("record #%d", r.log.RecordsProcessed)
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	r.errs = append(r.errs, ref+": "+msg)
}

// Finish derives the final status from the recorded outcomes.
func (r *RunRecorder) Finish(completedAt time.Time) *SyncRunLog {
	r.log.Status = RunStatusSuccess
	if r.log.RecordsFailed > 0 {
		r.log.Status = RunStatusPartial
	}
	r.log.ErrorMessage = strings.Join(r.errs, "; ")
	return r.seal(completedAt)
}

// Fatal finalizes the run as a batch-level error with zero counts.
func (r *RunRecorder) Fatal(err error, completedAt time.Time) *SyncRunLog {
	r.log.Status = RunStatusError
	r.log.RecordsProcessed = 0
	r.log.RecordsSuccess = 0
	r.log.RecordsFailed = 0
	if err != nil {
		r.log.ErrorMessage = err.Error()
	}
	return r.seal(completedAt)
}

func (r *RunRecorder) seal(completedAt time.Time) *SyncRunLog {
	if r.closed {
		out := r.log
		return &out
	}
	r.closed = true
	r.log.CompletedAt = completedAt
	r.log.DurationSeconds = completedAt.Sub(r.log.StartedAt).Seconds()
	out := r.log
	return &out
}
