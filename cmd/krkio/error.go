package main

import (
	"errors"
	"fmt"

	"github.com/desertwitch/krkio/internal/fileio"
)

var (
	// ErrArguments occurs when a command was given the wrong arguments.
	ErrArguments = fmt.Errorf("wrong arguments: %w", fileio.ErrUsage)

	// ErrUnknownCommand occurs when no command of the given name exists.
	ErrUnknownCommand = fmt.Errorf("unknown command: %w", fileio.ErrUsage)

	// ErrPagerFailed occurs when the pager could not be started.
	ErrPagerFailed = errors.New("pager has failed")
)
