// Package events publishes sync lifecycle events to RabbitMQ.
//
// Two events are emitted: sync.run.completed after every written sync run
// log and queue.item.failed when a queue item exhausts its retries. Messages
// are persistent JSON envelopes on a durable topic exchange, routed by event
// type. Publishing is best effort: failures are logged and never affect the
// sync or the drain that produced the event.
package events
