package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

// Queue records local mutations for outbound propagation.
type Queue struct {
	store Store
}

// New creates a queue on store.
func New(store Store) *Queue {
	return &Queue{store: store}
}

// Enqueue appends a pending item with retry count zero. It only writes to
// storage; delivery happens on the next drain. payload may be raw JSON
// (datatypes.JSON, json.RawMessage, []byte) or any value encoding/json accepts.
func (q *Queue) Enqueue(ctx context.Context, entityType, entityID string, op Operation, payload any) (*Item, error) {
	entityType = strings.ToLower(strings.TrimSpace(entityType))
	if entityType == "" || strings.TrimSpace(entityID) == "" {
		return nil, fmt.Errorf("%w: entity type and id are required", ErrInvalidItem)
	}
	if !op.Valid() {
		return nil, fmt.Errorf("%w: unknown operation %q", ErrInvalidItem, op)
	}

	raw, err := encodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}

	item := &Item{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  op,
		Payload:    raw,
		Status:     StatusPending,
	}
	if err := q.store.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to enqueue %s %s: %w", entityType, entityID, err)
	}
	return item, nil
}

func encodePayload(payload any) (datatypes.JSON, error) {
	switch p := payload.(type) {
	case nil:
		return datatypes.JSON("{}"), nil
	case datatypes.JSON:
		return p, nil
	case json.RawMessage:
		return datatypes.JSON(p), nil
	case []byte:
		return datatypes.JSON(p), nil
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		return datatypes.JSON(b), nil
	}
}
