package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"reservas/constants"
	"reservas/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes writers on the same resources across server instances.
// The returned release func is always safe to call.
type Locker interface {
	Lock(ctx context.Context, resourceType string, resourceIDs []string) (release func(), err error)
}

// NoopLocker is used when redis is not configured. Writers are then serialized
// only by the per-resource advisory lock the store takes inside the transaction.
type NoopLocker struct{}

func (NoopLocker) Lock(ctx context.Context, resourceType string, resourceIDs []string) (func(), error) {
	return func() {}, nil
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker takes one SETNX key per resource
type RedisLocker struct {
	rdb     *redis.Client
	ttl     time.Duration
	retries int
	wait    time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &RedisLocker{rdb: rdb, ttl: ttl, retries: 20, wait: 50 * time.Millisecond}
}

// LockKey is the redis key guarding one resource
func LockKey(resourceType, resourceID string) string {
	return fmt.Sprintf("%s%s:%s", constants.LockResourcePrefix, resourceType, strings.ToUpper(strings.TrimSpace(resourceID)))
}

// Lock acquires every key in sorted order so two callers cannot deadlock.
// It fails with errors.ErrResourceBusy when a key stays taken after the retries.
func (l *RedisLocker) Lock(ctx context.Context, resourceType string, resourceIDs []string) (func(), error) {
	keys := make([]string, 0, len(resourceIDs))
	seen := make(map[string]bool)
	for _, id := range resourceIDs {
		k := LockKey(resourceType, id)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	token := uuid.NewString()
	var held []string
	release := func() {
		for _, k := range held {
			releaseScript.Run(context.Background(), l.rdb, []string{k}, token)
		}
	}

	for _, k := range keys {
		ok, err := l.acquire(ctx, k, token)
		if err != nil {
			release()
			return func() {}, err
		}
		if !ok {
			release()
			return func() {}, errors.ErrResourceBusy
		}
		held = append(held, k)
	}
	return release, nil
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) (bool, error) {
	for i := 0; i <= l.retries; i++ {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(l.wait):
		}
	}
	return false, nil
}
