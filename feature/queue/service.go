package queue

import (
	"context"
	"encoding/json"

	syncqueue "channel-manager/core/queue"

	"go.uber.org/zap"
)

// Service implements the exposed queue operations.
type Service struct {
	queue     *syncqueue.Queue
	processor *syncqueue.Processor
	logger    *zap.Logger
}

// NewService creates the queue service.
func NewService(q *syncqueue.Queue, p *syncqueue.Processor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{queue: q, processor: p, logger: logger}
}

// EnqueueChange records a local mutation for outbound propagation.
func (s *Service) EnqueueChange(ctx context.Context, entityType, entityID string, op syncqueue.Operation, payload json.RawMessage) (*syncqueue.Item, error) {
	var p any
	if len(payload) > 0 && string(payload) != "null" {
		p = payload
	}
	item, err := s.queue.Enqueue(ctx, entityType, entityID, op, p)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Change enqueued",
		zap.Uint("queue_item_id", item.ID),
		zap.String("entity_type", item.EntityType),
		zap.String("entity_id", item.EntityID),
		zap.String("operation", string(item.Operation)))
	return item, nil
}

// DrainQueue runs one drain now.
func (s *Service) DrainQueue(ctx context.Context) (syncqueue.DrainResult, error) {
	return s.processor.Drain(ctx)
}

// GetQueueStatus reports pending and failed counts.
func (s *Service) GetQueueStatus(ctx context.Context) (syncqueue.QueueStatus, error) {
	return s.processor.Status(ctx)
}

// ListItems returns the newest items, optionally filtered by status.
func (s *Service) ListItems(ctx context.Context, status syncqueue.Status, limit int) ([]syncqueue.Item, error) {
	return s.processor.ListItems(ctx, status, limit)
}

// Requeue grants a failed item one more attempt.
func (s *Service) Requeue(ctx context.Context, id uint) (*syncqueue.Item, error) {
	return s.processor.Requeue(ctx, id)
}
