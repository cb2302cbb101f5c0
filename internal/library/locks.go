package library

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// identifierLocks serialises work on a single book identifier across
// goroutines and processes using lock files in dir.
type identifierLocks struct {
	dir string
}

func (l identifierLocks) path(bookID string) string {
	return filepath.Join(l.dir, bookID+".lock")
}

func (l identifierLocks) ensure() error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	return nil
}

// acquire blocks until the identifier's lock is held or timeout elapses.
func (l identifierLocks) acquire(ctx context.Context, bookID string, timeout time.Duration) (func(), error) {
	if err := l.ensure(); err != nil {
		return nil, err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	lock := flock.New(l.path(bookID))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !ok {
		if err == nil || ctx.Err() != nil {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("acquire lock for %s: %w", bookID, err)
	}
	return release(lock), nil
}

// tryAcquire takes the identifier's lock only if it is free right now.
func (l identifierLocks) tryAcquire(bookID string) (func(), bool, error) {
	if err := l.ensure(); err != nil {
		return nil, false, err
	}
	lock := flock.New(l.path(bookID))
	ok, err := lock.TryLock()
	if err != nil || !ok {
		return nil, false, err
	}
	return release(lock), true, nil
}

func release(lock *flock.Flock) func() {
	return func() {
		if err := lock.Unlock(); err != nil {
			log.Printf("Failed to release lock %s: %v", lock.Path(), err)
		}
	}
}
