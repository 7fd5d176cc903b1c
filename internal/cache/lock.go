package cache

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	kmserrors "github.com/OldRepublicDevs/kotormodsync/internal/errors"
)

// acquireLock takes the cross-process exclusive lock guarding both
// index files (spec §4.7: "the lock covers both load and save").
// Non-blocking, per the spec's "lock contention retries are
// cooperative": the caller decides whether to retry or fail loudly.
func acquireLock(cacheDir string) (*flock.Flock, error) {
	lockPath := filepath.Join(cacheDir, lockFileName)
	l := flock.New(lockPath)
	locked, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring cache lock %s: %w", lockPath, err)
	}
	if !locked {
		return nil, kmserrors.NewCacheLockedError(lockPath)
	}
	return l, nil
}

func releaseLock(l *flock.Flock) {
	if l == nil {
		return
	}
	_ = l.Unlock()
}
