package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"channel-manager/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, Models()...))
	return db
}

func setup(t *testing.T, cfg Config, opts ...ProcessorOption) (*Queue, *Processor, *GormStore) {
	t.Helper()
	store := NewGormStore(setupDB(t))
	return New(store), NewProcessor(store, cfg, zap.NewNop(), opts...), store
}

func failing(err error) Handler {
	return HandlerFunc(func(context.Context, Task) error { return err })
}

func TestEnqueue(t *testing.T) {
	q, _, store := setup(t, Config{})
	ctx := context.Background()

	item, err := q.Enqueue(ctx, "Reservation", "42", OperationUpdate, map[string]any{"status": "confirmed"})
	require.NoError(t, err)

	stored, err := store.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "reservation", stored.EntityType)
	assert.Equal(t, "42", stored.EntityID)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Zero(t, stored.RetryCount)
	assert.Nil(t, stored.ProcessedAt)
	assert.JSONEq(t, `{"status":"confirmed"}`, string(stored.Payload))

	_, err = q.Enqueue(ctx, "", "1", OperationCreate, nil)
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = q.Enqueue(ctx, "room", "1", Operation("upsert"), nil)
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestDrain_Success(t *testing.T) {
	q, p, store := setup(t, Config{})
	ctx := context.Background()

	var got Task
	p.Handle("guest", HandlerFunc(func(_ context.Context, task Task) error {
		got = task
		return nil
	}))

	item, err := q.Enqueue(ctx, "guest", "7", OperationUpdate, map[string]any{"totalSpent": "5600"})
	require.NoError(t, err)

	res, err := p.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Processed: 1, Completed: 1}, res)

	assert.Equal(t, "7", got.EntityID)
	assert.Equal(t, OperationUpdate, got.Operation)
	assert.Equal(t, "5600", got.Payload["totalSpent"])

	stored, err := store.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.NotNil(t, stored.ProcessedAt)
}

func TestDrain_RetryCeiling(t *testing.T) {
	q, p, store := setup(t, Config{MaxRetries: 3})
	ctx := context.Background()
	p.Handle("room", failing(errors.New("channel unreachable")))

	item, err := q.Enqueue(ctx, "room", "101", OperationUpdate, nil)
	require.NoError(t, err)

	for drain := 1; drain <= 3; drain++ {
		res, err := p.Drain(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Processed, "drain %d", drain)

		stored, err := store.Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, drain, stored.RetryCount)
		assert.Contains(t, stored.LastError, "channel unreachable")
		if drain < 3 {
			assert.Equal(t, StatusPending, stored.Status)
		} else {
			assert.Equal(t, StatusFailed, stored.Status)
			assert.NotNil(t, stored.ProcessedAt)
		}
	}

	res, err := p.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Processed)

	stored, err := store.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.RetryCount)
	assert.Equal(t, StatusFailed, stored.Status)
}

func TestDrain_DecodeFailure(t *testing.T) {
	q, p, store := setup(t, Config{MaxRetries: 1})
	ctx := context.Background()

	called := false
	p.Handle("reservation", HandlerFunc(func(context.Context, Task) error {
		called = true
		return nil
	}))

	item, err := q.Enqueue(ctx, "reservation", "9", OperationCreate, []byte(`{"status": `))
	require.NoError(t, err)

	res, err := p.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.False(t, called)

	stored, err := store.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Contains(t, stored.LastError, string(StageDecode))
}

func TestDrain_NoHandler(t *testing.T) {
	q, p, store := setup(t, Config{})
	ctx := context.Background()

	item, err := q.Enqueue(ctx, "invoice", "1", OperationCreate, nil)
	require.NoError(t, err)

	res, err := p.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Retried)

	stored, err := store.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.LastError, ErrNoHandler.Error())
	assert.Equal(t, 1, stored.RetryCount)
}

func TestDrain_OrderAndBatchSize(t *testing.T) {
	q, p, _ := setup(t, Config{BatchSize: 2})
	ctx := context.Background()

	var seen []string
	p.Handle("room", HandlerFunc(func(_ context.Context, task Task) error {
		seen = append(seen, task.EntityID)
		return nil
	}))
	for _, id := range []string{"a", "b", "c"} {
		_, err := q.Enqueue(ctx, "room", id, OperationUpdate, nil)
		require.NoError(t, err)
	}

	res, err := p.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, []string{"a", "b"}, seen)

	_, err = p.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestDrain_Reentrancy(t *testing.T) {
	q, p, _ := setup(t, Config{})
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	p.Handle("room", HandlerFunc(func(context.Context, Task) error {
		close(entered)
		<-release
		return nil
	}))
	_, err := q.Enqueue(ctx, "room", "1", OperationUpdate, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var first DrainResult
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, _ = p.Drain(ctx)
	}()

	<-entered
	assert.True(t, p.IsProcessing())

	second, err := p.Drain(ctx)
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Zero(t, second.Processed)

	status, err := p.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsProcessing)

	close(release)
	wg.Wait()

	assert.Equal(t, 1, first.Completed)
	assert.False(t, p.IsProcessing())
}

func TestDrain_FlagReleasedOnError(t *testing.T) {
	store := &brokenStore{err: errors.New("db down")}
	p := NewProcessor(store, Config{}, zap.NewNop())

	_, err := p.Drain(context.Background())
	assert.ErrorContains(t, err, "db down")
	assert.False(t, p.IsProcessing())
}

type brokenStore struct {
	GormStore
	err error
}

func (b *brokenStore) Pending(context.Context, int) ([]Item, error) { return nil, b.err }

type fakeLease struct {
	ok       bool
	err      error
	released bool
}

func (f *fakeLease) Acquire(context.Context) (func(context.Context) error, bool, error) {
	if f.err != nil || !f.ok {
		return nil, false, f.err
	}
	return func(context.Context) error {
		f.released = true
		return nil
	}, true, nil
}

func TestDrain_Lease(t *testing.T) {
	ctx := context.Background()

	t.Run("HeldElsewhere", func(t *testing.T) {
		q, p, _ := setup(t, Config{}, WithLease(&fakeLease{ok: false}))
		_, err := q.Enqueue(ctx, "room", "1", OperationUpdate, nil)
		require.NoError(t, err)

		res, err := p.Drain(ctx)
		require.NoError(t, err)
		assert.True(t, res.Skipped)
	})

	t.Run("Obtained", func(t *testing.T) {
		lease := &fakeLease{ok: true}
		_, p, _ := setup(t, Config{}, WithLease(lease))

		res, err := p.Drain(ctx)
		require.NoError(t, err)
		assert.False(t, res.Skipped)
		assert.True(t, lease.released)
	})

	t.Run("Error", func(t *testing.T) {
		_, p, _ := setup(t, Config{}, WithLease(&fakeLease{err: errors.New("redis down")}))

		_, err := p.Drain(ctx)
		assert.ErrorContains(t, err, "redis down")
		assert.False(t, p.IsProcessing())
	})
}

type recordingObserver struct {
	failed []uint
}

func (o *recordingObserver) ItemFailed(_ context.Context, item *Item) {
	o.failed = append(o.failed, item.ID)
}

func TestRequeue(t *testing.T) {
	obs := &recordingObserver{}
	q, p, store := setup(t, Config{MaxRetries: 1}, WithFailureObserver(obs))
	ctx := context.Background()
	p.Handle("room", failing(errors.New("rejected")))

	item, err := q.Enqueue(ctx, "room", "5", OperationUpdate, nil)
	require.NoError(t, err)

	_, err = p.Requeue(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotRequeueable)

	_, err = p.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{item.ID}, obs.failed)

	requeued, err := p.Requeue(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, requeued.Status)
	assert.Equal(t, 1, requeued.RetryCount)

	res, err := p.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	stored, err := store.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RetryCount)
	assert.Equal(t, StatusFailed, stored.Status)

	_, err = p.Requeue(ctx, 9999)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestStatusAndList(t *testing.T) {
	q, p, _ := setup(t, Config{MaxRetries: 1})
	ctx := context.Background()
	p.Handle("room", failing(errors.New("nope")))

	_, err := q.Enqueue(ctx, "room", "1", OperationUpdate, nil)
	require.NoError(t, err)
	_, err = p.Drain(ctx)
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, "room", "2", OperationUpdate, nil)
	require.NoError(t, err)

	status, err := p.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, QueueStatus{PendingCount: 1, FailedCount: 1}, status)

	failed, err := p.ListItems(ctx, StatusFailed, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "1", failed[0].EntityID)

	all, err := p.ListItems(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2", all[0].EntityID)
}

func TestStartStop(t *testing.T) {
	q, p, store := setup(t, Config{Interval: time.Second})
	ctx := context.Background()
	p.Handle("room", HandlerFunc(func(context.Context, Task) error { return nil }))

	item, err := q.Enqueue(ctx, "room", "1", OperationUpdate, nil)
	require.NoError(t, err)

	require.NoError(t, p.Start(ctx))
	require.NoError(t, p.Start(ctx))

	require.Eventually(t, func() bool {
		stored, err := store.Get(ctx, item.ID)
		return err == nil && stored.Status == StatusCompleted
	}, 5*time.Second, 50*time.Millisecond)

	p.Stop()
	p.Stop()
	assert.False(t, p.IsProcessing())
}
