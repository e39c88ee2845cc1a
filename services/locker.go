package services

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SlotLocker provides per-coordinate mutual exclusion for the duration of a
// reserve. Acquire blocks for at most the configured timeout and returns
// ErrLockTimeout afterwards; the release function is safe to call once on
// every exit path.
type SlotLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// RedisLocker implements SlotLocker with SET NX PX, replacing the legacy
// external lock service. The TTL bounds how long a crashed holder can block
// a coordinate.
type RedisLocker struct {
	Client  *redis.Client
	TTL     time.Duration
	Timeout time.Duration
}

// releaseScript deletes the lock only while it still holds our token. GET
// and DEL as two round trips would leave a window where the lock expires and
// another caller's fresh lock gets deleted.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// NewRedisLocker creates a Redis-backed slot locker.
func NewRedisLocker(client *redis.Client, ttl, timeout time.Duration) *RedisLocker {
	return &RedisLocker{Client: client, TTL: ttl, Timeout: timeout}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	deadline := time.Now().Add(l.Timeout)

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, &TransientError{Cause: err}
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, &TransientError{Cause: ctx.Err()}
		case <-time.After(50 * time.Millisecond):
		}
	}

	release := func() {
		if err := releaseScript.Run(context.Background(), l.Client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			logrus.WithError(err).WithField("key", key).Warn("Failed to release slot lock")
		}
	}
	return release, nil
}

// MemoryLocker is the in-process fallback used when Redis is unavailable and
// by tests. One channel per key acts as a binary semaphore.
type MemoryLocker struct {
	mu      sync.Mutex
	locks   map[string]chan struct{}
	Timeout time.Duration
}

// NewMemoryLocker creates an in-process slot locker.
func NewMemoryLocker(timeout time.Duration) *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]chan struct{}), Timeout: timeout}
}

func (l *MemoryLocker) semaphore(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.locks[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.locks[key] = sem
	}
	return sem
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	sem := l.semaphore(key)
	select {
	case sem <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-sem }) }, nil
	case <-ctx.Done():
		return nil, &TransientError{Cause: ctx.Err()}
	case <-time.After(l.Timeout):
		return nil, ErrLockTimeout
	}
}
