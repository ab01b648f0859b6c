package ui

import "errors"

// ErrInterrupted is returned by [Handler.Launch] when the pager was quit with
// Ctrl+C or its context was cancelled from the outside.
var ErrInterrupted = errors.New("pager was interrupted")
