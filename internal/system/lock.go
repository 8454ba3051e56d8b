package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run already holds the instance lock
var ErrLocked = errors.New("another disksetup run is in progress")

// InstanceLock keeps two runs of the tool from mutating targets at once.
// It says nothing about other programs touching the same devices.
type InstanceLock struct {
	path string
	lock *flock.Flock
}

// AcquireLock takes the lock at path without blocking
func AcquireLock(path string) (*InstanceLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock held: %s)", ErrLocked, path)
	}
	return &InstanceLock{path: path, lock: lock}, nil
}

// Path returns the lock file path
func (l *InstanceLock) Path() string {
	return l.path
}

// Release unlocks. The lock file is left in place.
func (l *InstanceLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
