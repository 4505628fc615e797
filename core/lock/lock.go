package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Config holds configuration for the Redis connection used for leases.
type Config struct {
	// Address is host:port of the Redis server. Empty disables leases.
	Address string `mapstructure:"address" default:""`
	// Password authenticates against Redis.
	Password string `mapstructure:"password" default:""`
	// DB selects the Redis database.
	DB int `mapstructure:"db" default:"0"`
	// LockTTL is how long a lease survives without a refresh. Held leases
	// are refreshed every half TTL.
	LockTTL time.Duration `mapstructure:"lock_ttl" default:"2m"`
}

// Enabled reports whether a Redis address is configured.
func (c Config) Enabled() bool {
	return c.Address != ""
}

// Locker obtains named leases from Redis.
type Locker struct {
	rdb    *redis.Client
	client *redislock.Client
	key    string
	ttl    time.Duration
}

// New connects to Redis and returns a locker for key.
func New(ctx context.Context, cfg Config, key string) (*Locker, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}

	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Locker{rdb: rdb, client: redislock.New(rdb), key: key, ttl: ttl}, nil
}

// Acquire tries to obtain the lease without waiting. ok is false when
// another holder owns it. The returned release func is nil unless ok.
// While held, the lease is refreshed every half TTL until release is called.
func (l *Locker) Acquire(ctx context.Context) (release func(context.Context) error, ok bool, err error) {
	held, err := l.client.Obtain(ctx, l.key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to obtain lease %s: %w", l.key, err)
	}
	return hold(ctx, held, l.ttl), true, nil
}

type lease interface {
	Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error
	Release(ctx context.Context) error
}

// hold keeps ls alive until the returned func releases it.
func hold(ctx context.Context, ls lease, ttl time.Duration) func(context.Context) error {
	refreshCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				if err := ls.Refresh(refreshCtx, ttl, nil); err != nil {
					// lost or unreachable; release reports what is left
					return
				}
			}
		}
	}()

	return func(ctx context.Context) error {
		stop()
		<-done
		err := ls.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			// expired while the drain was still running
			return nil
		}
		return err
	}
}

// Close closes the Redis connection.
func (l *Locker) Close() error {
	return l.rdb.Close()
}
