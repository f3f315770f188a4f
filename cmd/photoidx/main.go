// Command photoidx maintains the index of a photo directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/RKrahl/photoidx/library"
)

const (
	exitFailure = 1
	exitLocked  = 2
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "photoidx: %s\n", errorMessage(err))
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, library.ErrAlreadyLocked) {
		return exitLocked
	}
	return exitFailure
}

func errorMessage(err error) string {
	if errors.Is(err, library.ErrAlreadyLocked) {
		return "index is locked by another process, retry later"
	}
	return err.Error()
}
