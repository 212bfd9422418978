// Package lock keeps at most one workflow in flight per project.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "drafte:lock:project:" // drafte:lock:project:{id}

var ErrHeld = errors.New("lock held by another holder")

// Locker hands out per-project leases. A lease expires after ttl even if its
// holder never releases it.
type Locker interface {
	Acquire(ctx context.Context, projectID string, ttl time.Duration) (release func(), err error)
}

// release only deletes the key when it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, projectID string, ttl time.Duration) (func(), error) {
	key := keyPrefix + projectID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return func() {
		// the caller's ctx may already be done when releasing
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.client, []string{key}, token).Err()
	}, nil
}

// MemoryLocker is a single-process Locker.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]lease
	clock func() time.Time
}

type lease struct {
	token   string
	expires time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]lease), clock: time.Now}
}

func (l *MemoryLocker) Acquire(_ context.Context, projectID string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if cur, ok := l.held[projectID]; ok && now.Before(cur.expires) {
		return nil, ErrHeld
	}
	token := uuid.NewString()
	l.held[projectID] = lease{token: token, expires: now.Add(ttl)}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[projectID]; ok && cur.token == token {
			delete(l.held, projectID)
		}
	}, nil
}
