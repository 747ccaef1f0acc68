// Package redis provides Redis-based adapters for the unsubscribe system.
package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/mmk-unsubscribe/internal/core"
)

var _ core.RunLock = (*RunLock)(nil)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DefaultRunLockKey is the single key guarding job runs across processes.
const DefaultRunLockKey = "unsubscribe:run-lock"

// RunLock is a Redis-based mutual-exclusion lock for job runs.
// At most one holder exists per key; holders are identified by a random token
// so an expired holder can never release a newer holder's lock.
type RunLock struct {
	client redis.UniversalClient
	key    string
	logger *slog.Logger
}

// NewRunLock creates a RunLock on DefaultRunLockKey.
func NewRunLock(client redis.UniversalClient, logger *slog.Logger) *RunLock {
	return NewRunLockWithKey(client, DefaultRunLockKey, logger)
}

// NewRunLockWithKey creates a RunLock with a custom key.
func NewRunLockWithKey(client redis.UniversalClient, key string, logger *slog.Logger) *RunLock {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunLock{
		client: client,
		key:    key,
		logger: logger.With("component", "redis_run_lock"),
	}
}

// Acquire tries to take the lock for jobID. It never blocks waiting for
// another holder: ok is false when the lock is already held.
func (l *RunLock) Acquire(ctx context.Context, jobID string, ttl time.Duration) (func(), bool, error) {
	if ttl <= 0 {
		return nil, false, errors.New("lock ttl must be positive")
	}

	token, err := newToken(jobID)
	if err != nil {
		return nil, false, err
	}

	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// The run may have been canceled; the lock must still be released.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{l.key}, token).Err(); err != nil {
			l.logger.WarnContext(rctx, "failed to release run lock", "job_id", jobID, "error", err)
		}
	}
	return release, true, nil
}

// Holder returns the token of the current holder, or "" when the lock is free.
func (l *RunLock) Holder(ctx context.Context) (string, error) {
	v, err := l.client.Get(ctx, l.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

func newToken(jobID string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate lock token: %w", err)
	}
	return jobID + ":" + hex.EncodeToString(buf), nil
}
