// Package booking defines the canonical reservation shape that every channel
// provider normalizes into, together with the sync run audit log.
//
// # Canonical Booking
//
// A CanonicalBooking is keyed by the pair (ChannelName, ExternalBookingID).
// The reconciliation engine upserts on that key, so replaying the same fetch
// only ever updates rows. Cancellation is a status transition, never a delete.
//
// # Status Vocabulary
//
// Five canonical statuses exist: confirmed, cancelled, checked-in, checked-out
// and no-show. Providers map their own vocabulary into these through a
// per-provider table (see core/channel). Values a provider sends that no table
// knows about survive as lower-cased strings so they stay visible for debugging.
//
// # Sync Run Log
//
// SyncRunLog rows are append-only. A RunRecorder accumulates per-record
// outcomes for one batch or push attempt and derives the final status:
//   - success: no record failed
//   - partial: at least one record failed
//   - error:   the batch failed before per-record processing started
package booking
