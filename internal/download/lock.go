package download

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"dalo/internal/services"
)

const (
	lockFileName   = ".dalo.lock"
	lockRetryDelay = 200 * time.Millisecond
)

// WorkDirLock is an exclusive advisory lock on a working directory, held for
// the length of a run.
type WorkDirLock struct {
	lock *flock.Flock
	path string
}

// LockWorkDir takes the lock for workDir, waiting while another run holds
// it. Runs sharing a directory are serialized; a canceled wait returns the
// context error.
func LockWorkDir(ctx context.Context, workDir string) (*WorkDirLock, error) {
	path := filepath.Join(workDir, lockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrConfiguration, "lock", "acquire", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "lock", "acquire", "could not lock "+workDir, nil)
	}
	return &WorkDirLock{lock: lock, path: path}, nil
}

// Path returns the lock file location.
func (l *WorkDirLock) Path() string { return l.path }

// Release drops the lock. The lock file itself is left in place.
func (l *WorkDirLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
