package ingest

import (
	"context"
	"sync"

	"github.com/chronos-erp/flowledger/internal/domain"
)

// Locker serializes ingestion jobs per target collection. Two jobs
// writing the same collection must never run concurrently.
type Locker interface {
	// Acquire takes the lock for key or fails with domain.ErrJobLocked.
	// The returned function releases the lock.
	Acquire(ctx context.Context, key string) (func(ctx context.Context) error, error)
}

// LocalLocker is an in-process Locker for tests and the memory-backed
// server mode.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLocker creates an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]bool)}
}

// Acquire implements Locker.
func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(ctx context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] {
		return nil, domain.ErrJobLocked
	}
	l.held[key] = true

	release := func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}
	return release, nil
}
