// Package channel defines the contract every external channel (OTA) provider
// implements, plus the shared plumbing providers are built from.
//
// # Provider
//
// A Provider translates canonical operations into one channel's wire format:
// fetching bookings for a date window, pushing availability and rates, and
// updating a booking's status. Providers are selected at the call site by name
// through a Registry, so adding a channel is a matter of registering a Factory.
//
// # Status Tables
//
// Each provider owns a StatusTable mapping the five canonical statuses to its
// own vocabulary and back. Inbound values that the table does not know are
// passed through lower-cased instead of failing the fetch.
//
// # Transport
//
// Transport wraps an outbound HTTP Doer. Network failures, timeouts and non-2xx
// responses all surface as *TransportError carrying the provider status text.
// Fetches propagate it; pushes swallow it into a false return.
package channel
