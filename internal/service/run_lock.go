package service

import (
	"context"
	"sync"
	"time"

	"github.com/target/mmk-unsubscribe/internal/core"
)

var _ core.RunLock = (*LocalRunLock)(nil)

// LocalRunLock is an in-process core.RunLock used when no shared lock is configured.
type LocalRunLock struct {
	mu     sync.Mutex
	holder string
}

// Acquire takes the lock without waiting; ttl is ignored.
func (l *LocalRunLock) Acquire(_ context.Context, jobID string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.holder != "" {
		return nil, false, nil
	}
	l.holder = jobID

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.holder = ""
			l.mu.Unlock()
		})
	}, true, nil
}

// Holder returns the job currently holding the lock, or "".
func (l *LocalRunLock) Holder() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holder
}
