package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"channel-manager/core/booking"

	"go.uber.org/zap"
)

// ErrPushRejected is recorded when a channel answers a push with a failure.
var ErrPushRejected = errors.New("push rejected by channel")

// RunObserver is notified after a run log has been written.
type RunObserver interface {
	RunFinished(ctx context.Context, run *booking.SyncRunLog)
}

// FetchFunc loads the batch to reconcile.
type FetchFunc func(ctx context.Context) ([]booking.CanonicalBooking, error)

// Engine reconciles canonical bookings into a Store.
type Engine struct {
	store    Store
	logger   *zap.Logger
	observer RunObserver
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers an observer for finished runs.
func WithObserver(o RunObserver) Option {
	return func(e *Engine) { e.observer = o }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine on store.
func NewEngine(store Store, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync fetches a batch and reconciles it. A fetch failure is a batch fatal:
// an "error" run is written and *BatchFatalError is returned with it.
func (e *Engine) Sync(ctx context.Context, channelID uint, channelName string, fetch FetchFunc) (*booking.SyncRunLog, error) {
	startedAt := e.now()
	bookings, err := fetch(ctx)
	if err != nil {
		return e.fatal(ctx, booking.StartRun(channelID, channelName, booking.SyncTypeBookings, startedAt), err)
	}
	return e.reconcile(ctx, booking.StartRun(channelID, channelName, booking.SyncTypeBookings, startedAt), channelID, channelName, bookings)
}

// Reconcile upserts bookings for channelName and writes exactly one run log.
// Per-record failures make the run partial; they are never returned.
func (e *Engine) Reconcile(ctx context.Context, channelID uint, channelName string, bookings []booking.CanonicalBooking) (*booking.SyncRunLog, error) {
	rec := booking.StartRun(channelID, channelName, booking.SyncTypeBookings, e.now())
	return e.reconcile(ctx, rec, channelID, channelName, bookings)
}

func (e *Engine) reconcile(ctx context.Context, rec *booking.RunRecorder, channelID uint, channelName string, bookings []booking.CanonicalBooking) (*booking.SyncRunLog, error) {
	if err := ctx.Err(); err != nil {
		return e.fatal(ctx, rec, err)
	}

	for i := range bookings {
		b := bookings[i]
		err := requireStay(&b)
		if err == nil {
			_, _, err = e.upsert(ctx, channelID, channelName, &b)
		}
		if err != nil {
			recErr := &RecordError{Channel: channelName, ExternalID: b.ExternalBookingID, Index: i + 1, Err: err}
			e.logger.Warn("Booking reconciliation failed",
				zap.String("channel", channelName),
				zap.String("external_booking_id", b.ExternalBookingID),
				zap.Int("record", i+1),
				zap.Error(recErr))
			rec.Failure(b.ExternalBookingID, recErr)
			continue
		}
		rec.Success()
	}

	run := rec.Finish(e.now())
	if err := e.store.CreateRunLog(ctx, run); err != nil {
		return run, fmt.Errorf("failed to write sync run log: %w", err)
	}

	e.logger.Info("Booking sync finished",
		zap.String("channel", channelName),
		zap.String("status", string(run.Status)),
		zap.Int("processed", run.RecordsProcessed),
		zap.Int("failed", run.RecordsFailed))
	e.notify(ctx, run)
	return run, nil
}

func (e *Engine) fatal(ctx context.Context, rec *booking.RunRecorder, cause error) (*booking.SyncRunLog, error) {
	run := rec.Fatal(cause, e.now())
	fatalErr := &BatchFatalError{Channel: run.ChannelName, Err: cause}

	// The context may be what failed; the audit row is written regardless.
	if err := e.store.CreateRunLog(context.WithoutCancel(ctx), run); err != nil {
		e.logger.Error("Failed to write error run log", zap.String("channel", run.ChannelName), zap.Error(err))
	} else {
		fatalErr.RunLogID = run.ID
	}

	e.logger.Error("Booking sync failed", zap.String("channel", run.ChannelName), zap.Error(cause))
	e.notify(ctx, run)
	return run, fatalErr
}

// requireStay rejects batch records that cannot be placed on a calendar.
func requireStay(b *booking.CanonicalBooking) error {
	if b.ExternalBookingID == "" {
		return ErrMissingExternalID
	}
	if b.CheckIn.IsZero() || b.CheckOut.IsZero() {
		return ErrMissingStayDates
	}
	return nil
}

// UpsertBooking reconciles a single booking without writing a run log.
// Stay dates are optional here; only the external id is required.
// It reports whether the row was created.
func (e *Engine) UpsertBooking(ctx context.Context, channelID uint, b booking.CanonicalBooking) (*booking.CanonicalBooking, bool, error) {
	stored, created, err := e.upsert(ctx, channelID, b.ChannelName, &b)
	if err != nil {
		return nil, false, &RecordError{Channel: b.ChannelName, ExternalID: b.ExternalBookingID, Index: 1, Err: err}
	}
	return stored, created, nil
}

func (e *Engine) upsert(ctx context.Context, channelID uint, channelName string, in *booking.CanonicalBooking) (*booking.CanonicalBooking, bool, error) {
	if in.ExternalBookingID == "" {
		return nil, false, ErrMissingExternalID
	}
	in.ChannelName = channelName
	if in.ChannelID == 0 {
		in.ChannelID = channelID
	}

	syncedAt := e.now()
	existing, err := e.store.FindBooking(ctx, channelName, in.ExternalBookingID)
	if err != nil {
		return nil, false, fmt.Errorf("lookup: %w", err)
	}

	if existing == nil {
		row := *in
		row.ID = 0
		row.SyncStatus = booking.SyncStatusSynced
		row.LastSyncedAt = &syncedAt
		if err := e.store.CreateBooking(ctx, &row); err == nil {
			return &row, true, nil
		} else if existing, _ = e.store.FindBooking(ctx, channelName, in.ExternalBookingID); existing == nil {
			return nil, false, fmt.Errorf("insert: %w", err)
		}
		// A concurrent writer inserted the key first; fall through and update it.
	}

	existing.Overwrite(*in)
	existing.SyncStatus = booking.SyncStatusSynced
	existing.LastSyncedAt = &syncedAt
	if err := e.store.UpdateBooking(ctx, existing); err != nil {
		return nil, false, fmt.Errorf("update: %w", err)
	}
	return existing, false, nil
}

// RecordPush writes the run log of one availability or rate push.
func (e *Engine) RecordPush(ctx context.Context, channelID uint, channelName string, syncType booking.SyncType, startedAt time.Time, ok bool) (*booking.SyncRunLog, error) {
	rec := booking.StartRun(channelID, channelName, syncType, startedAt)
	if ok {
		rec.Success()
	} else {
		rec.Failure(string(syncType), ErrPushRejected)
	}
	run := rec.Finish(e.now())

	if err := e.store.CreateRunLog(ctx, run); err != nil {
		return run, fmt.Errorf("failed to write sync run log: %w", err)
	}
	e.notify(ctx, run)
	return run, nil
}

// ListRuns returns recent runs, newest first.
func (e *Engine) ListRuns(ctx context.Context, channelName string, limit int) ([]booking.SyncRunLog, error) {
	return e.store.ListRuns(ctx, channelName, limit)
}

func (e *Engine) notify(ctx context.Context, run *booking.SyncRunLog) {
	if e.observer != nil {
		e.observer.RunFinished(ctx, run)
	}
}
