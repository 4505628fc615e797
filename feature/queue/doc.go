// Package queue exposes the outbound sync queue over HTTP: enqueueing local
// changes, on-demand drains, status, listing and manual requeue.
package queue
