package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// Guard is the single engine-wide mutual-exclusion lock. Every mutating
// operation runs its whole read-then-write transaction inside Do; one
// lock with bounded wait replaces any ordering discipline between
// per-resource locks.
//
// There is no rollback: a crash after acquisition but mid-write leaves
// partial state behind. That limitation is inherited from the storage
// model (no multi-row transactions assumed) and is intentionally not
// papered over here.
type Guard struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

func NewGuard(timeout time.Duration) *Guard {
	return &Guard{
		sem:     semaphore.NewWeighted(1),
		timeout: timeout,
	}
}

// Do acquires the lock, waiting at most the configured timeout, runs fn
// and releases the lock even when fn fails. Failure to acquire aborts
// with ErrLockTimeout and no partial writes.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.sem.Acquire(acquireCtx, 1); err != nil {
		if acquireCtx.Err() != nil && ctx.Err() == nil {
			return fmt.Errorf("%w after %v", ErrLockTimeout, g.timeout)
		}
		return fmt.Errorf("engine lock acquisition aborted: %w", err)
	}
	defer g.sem.Release(1)

	return fn(ctx)
}
