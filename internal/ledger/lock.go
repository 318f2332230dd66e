package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockRetryInterval = 10 * time.Millisecond
	lockTimeout       = 5 * time.Second
)

// fileLock serializes ledger writers with a kernel advisory lock on a
// sidecar file. The kernel releases the lock automatically when the holding
// process exits, so a crashed writer never wedges the ledger and a slow
// writer is never mistaken for a dead one.
type fileLock struct {
	fl *flock.Flock
}

func newFileLock(path string) *fileLock {
	return &fileLock{fl: flock.New(path)}
}

// Acquire blocks until the lock is held or the timeout elapses.
func (l *fileLock) Acquire() error {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := l.fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return fmt.Errorf("failed to acquire ledger lock %s: %w", l.fl.Path(), err)
	}
	if !locked {
		return fmt.Errorf("timed out waiting for ledger lock %s", l.fl.Path())
	}
	return nil
}

// Release drops this holder's lock. Other holders are unaffected: only the
// advisory lock on our own descriptor is released, and the sidecar file is
// left in place.
func (l *fileLock) Release() {
	l.fl.Unlock()
}
