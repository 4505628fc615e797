package queue

import "context"

// Task is a decoded queue item handed to a Handler.
type Task struct {
	ItemID     uint
	EntityType string
	EntityID   string
	Operation  Operation
	// Payload is the decoded JSON object; it is empty, never nil, for an empty payload.
	Payload    map[string]any
	RetryCount int
}

// Handler propagates one entity type.
type Handler interface {
	Handle(ctx context.Context, task Task) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, task Task) error

func (f HandlerFunc) Handle(ctx context.Context, task Task) error {
	return f(ctx, task)
}
