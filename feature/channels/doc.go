// Package channels exposes the channel synchronization operations.
//
// The Service ties the provider registry to the reconciliation engine:
// inbound booking syncs, outbound availability, rate and status pushes, and
// the run history. Channel accounts live in the channels table; operations
// that take a channel id resolve name and credentials from there, while the
// lower level operations accept a Target directly.
//
// Fetched payloads can be archived to object storage, one object per sync,
// and active channels can be synced on a schedule.
package channels
