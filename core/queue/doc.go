// Package queue implements the durable outbound sync queue and its processor.
//
// Local mutations (reservations, rooms, guests) are recorded with Enqueue as
// pending items. The Processor drains pending items in id order on a fixed
// interval and dispatches each one to the Handler registered for its entity
// type.
//
// # Delivery
//
// Delivery is at least once. A failed item stays pending with its retry
// count incremented; once the count reaches the configured ceiling the item
// becomes failed and the processor no longer touches it. Payloads that cannot
// be decoded fail through the same path as handler errors.
//
// # Exclusivity
//
// Only one drain runs per process: a concurrent Drain returns immediately
// with Skipped set. With a Lease configured the drain additionally needs a
// cross-process lease and is skipped when another instance holds it.
package queue
