package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Lease is a cross-process exclusion for drains.
type Lease interface {
	// Acquire returns ok false without error when another process holds the lease.
	Acquire(ctx context.Context) (release func(context.Context) error, ok bool, err error)
}

// FailureObserver is notified when an item reaches the failed state.
type FailureObserver interface {
	ItemFailed(ctx context.Context, item *Item)
}

// DrainResult summarizes one drain.
type DrainResult struct {
	// Skipped is true when another drain held the flag or the lease.
	Skipped   bool `json:"skipped"`
	Processed int  `json:"processed"`
	Completed int  `json:"completed"`
	Retried   int  `json:"retried"`
	Failed    int  `json:"failed"`
}

// QueueStatus is the operator view of the queue.
type QueueStatus struct {
	PendingCount int64 `json:"pending_count"`
	FailedCount  int64 `json:"failed_count"`
	IsProcessing bool  `json:"is_processing"`
}

// Processor drains pending items and dispatches them by entity type.
type Processor struct {
	store    Store
	cfg      Config
	logger   *zap.Logger
	lease    Lease
	observer FailureObserver
	now      func() time.Time

	handlersMu sync.RWMutex
	handlers   map[string]Handler

	processing atomic.Bool

	cronMu sync.Mutex
	cron   *cron.Cron
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLease requires a cross-process lease for every drain.
func WithLease(l Lease) ProcessorOption {
	return func(p *Processor) { p.lease = l }
}

// WithFailureObserver registers an observer for terminal failures.
func WithFailureObserver(o FailureObserver) ProcessorOption {
	return func(p *Processor) { p.observer = o }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) { p.now = now }
}

// NewProcessor creates a processor. Zero config values take the defaults.
func NewProcessor(store Store, cfg Config, logger *zap.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Processor{
		store:    store,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		now:      time.Now,
		handlers: make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle registers h for entityType, replacing any previous handler.
func (p *Processor) Handle(entityType string, h Handler) {
	p.handlersMu.Lock()
	defer p.handlersMu.Unlock()
	p.handlers[entityType] = h
}

func (p *Processor) handler(entityType string) (Handler, bool) {
	p.handlersMu.RLock()
	defer p.handlersMu.RUnlock()
	h, ok := p.handlers[entityType]
	return h, ok
}

// Drain processes up to BatchSize pending items sequentially. A call made
// while another drain is running returns immediately with Skipped set.
func (p *Processor) Drain(ctx context.Context) (DrainResult, error) {
	if !p.processing.CompareAndSwap(false, true) {
		p.logger.Debug("Drain already in progress, skipping")
		return DrainResult{Skipped: true}, nil
	}
	defer p.processing.Store(false)

	if p.lease != nil {
		release, ok, err := p.lease.Acquire(ctx)
		if err != nil {
			return DrainResult{}, fmt.Errorf("failed to acquire drain lease: %w", err)
		}
		if !ok {
			p.logger.Debug("Drain lease held by another instance, skipping")
			return DrainResult{Skipped: true}, nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				p.logger.Warn("Failed to release drain lease", zap.Error(err))
			}
		}()
	}

	items, err := p.store.Pending(ctx, p.cfg.BatchSize)
	if err != nil {
		return DrainResult{}, fmt.Errorf("failed to load pending items: %w", err)
	}

	var res DrainResult
	for i := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		item := &items[i]
		res.Processed++
		switch p.process(ctx, item) {
		case StatusCompleted:
			res.Completed++
		case StatusFailed:
			res.Failed++
		default:
			res.Retried++
		}
	}

	if res.Processed > 0 {
		p.logger.Info("Queue drained",
			zap.Int("processed", res.Processed),
			zap.Int("completed", res.Completed),
			zap.Int("retried", res.Retried),
			zap.Int("failed", res.Failed))
	}
	return res, nil
}

// process runs one item and persists its new state, which it returns.
func (p *Processor) process(ctx context.Context, item *Item) Status {
	err := p.dispatch(ctx, item)
	now := p.now()

	if err == nil {
		item.Status = StatusCompleted
		item.LastError = ""
		item.ProcessedAt = &now
	} else {
		item.RetryCount++
		item.LastError = err.Error()
		if item.RetryCount >= p.cfg.MaxRetries {
			item.Status = StatusFailed
			item.ProcessedAt = &now
		}
		p.logger.Warn("Queue item failed",
			zap.Uint("queue_item_id", item.ID),
			zap.String("entity_type", item.EntityType),
			zap.Int("retry_count", item.RetryCount),
			zap.String("status", string(item.Status)),
			zap.Error(err))
	}

	if saveErr := p.store.Save(ctx, item); saveErr != nil {
		// The item stays in its previous state and is picked up again next drain.
		p.logger.Error("Failed to persist queue item state",
			zap.Uint("queue_item_id", item.ID),
			zap.Error(saveErr))
		return StatusPending
	}

	if item.Status == StatusFailed && p.observer != nil {
		p.observer.ItemFailed(ctx, item)
	}
	return item.Status
}

func (p *Processor) dispatch(ctx context.Context, item *Item) error {
	payload := map[string]any{}
	if len(item.Payload) > 0 {
		if err := json.Unmarshal(item.Payload, &payload); err != nil {
			return &ItemError{ItemID: item.ID, EntityType: item.EntityType, Stage: StageDecode, Err: err}
		}
		if payload == nil {
			payload = map[string]any{}
		}
	}

	h, ok := p.handler(item.EntityType)
	if !ok {
		return &ItemError{ItemID: item.ID, EntityType: item.EntityType, Stage: StageDispatch, Err: ErrNoHandler}
	}

	err := h.Handle(ctx, Task{
		ItemID:     item.ID,
		EntityType: item.EntityType,
		EntityID:   item.EntityID,
		Operation:  item.Operation,
		Payload:    payload,
		RetryCount: item.RetryCount,
	})
	if err != nil {
		var itemErr *ItemError
		if errors.As(err, &itemErr) {
			return err
		}
		return &ItemError{ItemID: item.ID, EntityType: item.EntityType, Stage: StageDispatch, Err: err}
	}
	return nil
}

// Status reports queue depth and whether a drain is running in this process.
func (p *Processor) Status(ctx context.Context) (QueueStatus, error) {
	pending, err := p.store.Count(ctx, StatusPending)
	if err != nil {
		return QueueStatus{}, fmt.Errorf("failed to count pending items: %w", err)
	}
	failed, err := p.store.Count(ctx, StatusFailed)
	if err != nil {
		return QueueStatus{}, fmt.Errorf("failed to count failed items: %w", err)
	}
	return QueueStatus{
		PendingCount: pending,
		FailedCount:  failed,
		IsProcessing: p.processing.Load(),
	}, nil
}

// IsProcessing reports whether a drain is running in this process.
func (p *Processor) IsProcessing() bool {
	return p.processing.Load()
}

// Requeue moves a failed item back to pending. The retry count is kept, so
// the item gets exactly one more attempt before failing again.
func (p *Processor) Requeue(ctx context.Context, id uint) (*Item, error) {
	item, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != StatusFailed {
		return nil, fmt.Errorf("%w: item %d is %s", ErrNotRequeueable, id, item.Status)
	}

	item.Status = StatusPending
	item.ProcessedAt = nil
	if err := p.store.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to requeue item %d: %w", id, err)
	}
	p.logger.Info("Queue item requeued", zap.Uint("queue_item_id", id), zap.Int("retry_count", item.RetryCount))
	return item, nil
}

// ListItems returns the newest items, optionally filtered by status.
func (p *Processor) ListItems(ctx context.Context, status Status, limit int) ([]Item, error) {
	return p.store.List(ctx, status, limit)
}

// Start schedules a drain every Interval until Stop. Calling Start on a
// started processor is a no-op.
func (p *Processor) Start(ctx context.Context) error {
	p.cronMu.Lock()
	defer p.cronMu.Unlock()
	if p.cron != nil {
		return nil
	}

	c := cron.New()
	spec := "@every " + p.cfg.Interval.String()
	if _, err := c.AddFunc(spec, func() {
		if _, err := p.Drain(ctx); err != nil {
			p.logger.Error("Scheduled drain failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule drain %q: %w", spec, err)
	}

	c.Start()
	p.cron = c
	p.logger.Info("Queue processor started", zap.Duration("interval", p.cfg.Interval))
	return nil
}

// Stop cancels the schedule and waits for a running drain to finish.
func (p *Processor) Stop() {
	p.cronMu.Lock()
	c := p.cron
	p.cron = nil
	p.cronMu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	p.logger.Info("Queue processor stopped")
}
