package library

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyLocked = errors.New("index is locked by another process")
	ErrInvalidRecord = errors.New("invalid index record")
	ErrReservedTag   = errors.New("tag uses the reserved prefix " + ReservedPrefix)
	ErrNotFound      = errors.New("not found")
)

// AlreadyLockedError is returned when the index file is locked by someone
// else. It never blocks waiting for the lock.
type AlreadyLockedError struct {
	Path      string
	Exclusive bool
}

func (e *AlreadyLockedError) Error() string {
	mode := "shared"
	if e.Exclusive {
		mode = "exclusive"
	}
	return fmt.Sprintf("cannot acquire %s lock on %s: %s", mode, e.Path, ErrAlreadyLocked)
}

func (e *AlreadyLockedError) Is(target error) bool {
	return target == ErrAlreadyLocked
}

// NotFound is the filename of an item missing from the index.
type NotFound string

func (e NotFound) Error() string {
	return fmt.Sprintf("no item with filename %s", string(e))
}

func (e NotFound) Is(target error) bool {
	return target == ErrNotFound
}
