// Package redis provides Redis-backed coordination: the per-collection
// ingestion job lock and the HTTP idempotency store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/chronos-erp/flowledger/internal/domain"
)

// releaseScript deletes the lock key only when it still holds our
// token, so an expired lock taken over by another job is never
// released by its previous owner.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// JobLocker implements ingest.Locker on Redis. The TTL bounds how long
// a crashed job can keep a collection locked.
type JobLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewJobLocker creates a JobLocker.
func NewJobLocker(client *redis.Client, ttl time.Duration) *JobLocker {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &JobLocker{
		client: client,
		prefix: "joblock:",
		ttl:    ttl,
	}
}

// Acquire takes the lock for key or fails with domain.ErrJobLocked.
func (l *JobLocker) Acquire(ctx context.Context, key string) (func(ctx context.Context) error, error) {
	fullKey := l.prefix + key
	token := ulid.Make().String()

	set, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire job lock %s: %w", key, err)
	}
	if !set {
		return nil, domain.ErrJobLocked
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("release job lock %s: %w", key, err)
		}
		return nil
	}
	return release, nil
}
