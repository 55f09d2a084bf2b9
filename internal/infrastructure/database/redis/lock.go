package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.CodeConflict, "failed to acquire lock")
	ErrLockNotHeld     = errors.New(errors.CodeConflict, "lock not held by this owner")
)

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// Locker hands out short-lived mutual-exclusion leases keyed by name. It
// serialises reservation writes for the same property across API instances.
type Locker struct {
	client     *Client
	ttl        time.Duration
	retryDelay time.Duration
	retryCount int
	token      func() string
	logger     logging.Logger
}

// LockerOption customises a Locker.
type LockerOption func(*Locker)

// WithLockTTL sets the lease length.
func WithLockTTL(ttl time.Duration) LockerOption {
	return func(l *Locker) { l.ttl = ttl }
}

// WithRetry sets how often and how long Acquire waits for a held lock.
func WithRetry(count int, delay time.Duration) LockerOption {
	return func(l *Locker) { l.retryCount, l.retryDelay = count, delay }
}

// WithTokenFunc overrides lease token generation.
func WithTokenFunc(fn func() string) LockerOption {
	return func(l *Locker) { l.token = fn }
}

// NewLocker builds a Locker on client.
func NewLocker(client *Client, log logging.Logger, opts ...LockerOption) *Locker {
	l := &Locker{
		client:     client,
		ttl:        10 * time.Second,
		retryDelay: 50 * time.Millisecond,
		retryCount: 20,
		token:      func() string { return uuid.NewString() },
		logger:     log,
	}
	if l.logger == nil {
		l.logger = logging.NewNopLogger()
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire blocks until the lock named name is held or retries run out, and
// returns a release function.
func (l *Locker) Acquire(ctx context.Context, name string) (func(context.Context) error, error) {
	key := l.client.Key("lock:" + name)
	token := l.token()

	for attempt := 0; ; attempt++ {
		ok, err := l.client.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeCacheError, "acquire lock")
		}
		if ok {
			break
		}
		if attempt >= l.retryCount {
			return nil, ErrLockNotAcquired.WithDetail(name)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}

	release := func(ctx context.Context) error {
		n, err := unlockScript.Run(ctx, l.client.rdb, []string{key}, token).Int64()
		if err != nil {
			l.logger.Warn("lock release failed", logging.String("lock", name), logging.Err(err))
			return errors.Wrap(err, errors.CodeCacheError, "release lock")
		}
		if n == 0 {
			return ErrLockNotHeld.WithDetail(name)
		}
		return nil
	}
	return release, nil
}

//Personal.AI order the ending
