// Package reconcile upserts canonical bookings fetched from a channel into
// local storage and records one SyncRunLog per batch.
//
// # Keyed Upsert
//
// Every booking is keyed on (channel name, external booking id). A booking
// seen for the first time is inserted; a booking seen again has its mutable
// fields overwritten and is marked synced. Running the same batch twice
// therefore leaves the table unchanged apart from timestamps.
//
// # Failure Isolation
//
// Records are processed one at a time. A record that fails validation or
// storage is counted as failed and described in the run's error message,
// and the batch moves on. Only a failure before the first record (for
// example the channel fetch itself) produces an "error" run, which is
// written and then returned as *BatchFatalError.
//
// # Usage
//
//	engine := reconcile.NewEngine(reconcile.NewGormStore(db), logger)
//	run, err := engine.Sync(ctx, ch.ID, ch.Name, func(ctx context.Context) ([]booking.CanonicalBooking, error) {
//	    return provider.FetchBookings(ctx, window)
//	})
package reconcile
