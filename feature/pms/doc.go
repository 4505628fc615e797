// Package pms holds the local property records (reservations, rooms and
// guests) and the queue handlers that propagate their changes.
//
// Handlers are registered on a queue.Processor per entity type:
//
//   - reservation: mirrors channel-sourced reservations into the canonical
//     booking table and keeps room occupancy in step with the stay status.
//   - room: pushes the remaining availability of the room type to every
//     active channel.
//   - guest: recomputes loyalty points and tier from the total spend.
package pms
