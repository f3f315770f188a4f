package library

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Locks are flock(2) locks, held per open file. Two Index values in one
// process therefore exclude each other like two processes do.

func tryLock(path string, exclusive bool) (*flock.Flock, error) {
	l := flock.New(path)
	try := l.TryRLock
	if exclusive {
		try = l.TryLock
	}
	ok, err := try()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !ok {
		return nil, &AlreadyLockedError{Path: path, Exclusive: exclusive}
	}
	return l, nil
}

// upgrade converts a shared lock to an exclusive one. A failed
// conversion may drop the shared lock, so it is taken again.
func upgrade(l *flock.Flock) error {
	ok, err := l.TryLock()
	if err == nil && ok {
		return nil
	}
	if uerr := l.Unlock(); uerr == nil {
		_, _ = l.TryRLock()
	}
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", l.Path(), err)
	}
	return &AlreadyLockedError{Path: l.Path(), Exclusive: true}
}

// downgrade returns from an exclusive lock to a shared one. flock has no
// atomic downgrade, another process may grab the lock in between.
func downgrade(l *flock.Flock) error {
	if err := l.Unlock(); err != nil {
		return err
	}
	ok, err := l.TryRLock()
	if err != nil {
		return err
	}
	if !ok {
		return &AlreadyLockedError{Path: l.Path()}
	}
	return nil
}
