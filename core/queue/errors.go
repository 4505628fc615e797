package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHandler is returned for items whose entity type has no handler.
	ErrNoHandler = errors.New("no handler for entity type")
	// ErrItemNotFound is returned when an item id does not exist.
	ErrItemNotFound = errors.New("queue item not found")
	// ErrNotRequeueable is returned when requeueing an item that has not failed.
	ErrNotRequeueable = errors.New("only failed items can be requeued")
	// ErrInvalidItem rejects an enqueue with missing or unknown fields.
	ErrInvalidItem = errors.New("invalid queue item")
)

// Stage is where in processing an item failed.
type Stage string

const (
	StageDecode   Stage = "decode"
	StageDispatch Stage = "dispatch"
)

// ItemError is the failure of one queue item. It drives the retry state machine.
type ItemError struct {
	ItemID     uint
	EntityType string
	Stage      Stage
	Err        error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("queue item %d (%s) %s: %v", e.ItemID, e.EntityType, e.Stage, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
