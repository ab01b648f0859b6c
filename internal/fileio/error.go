package fileio

import "errors"

var (
	// ErrUsage is returned when an operation was called with arguments that
	// can never be valid, such as a malformed mode string.
	ErrUsage = errors.New("usage error")

	// ErrTypeMismatch is returned when a payload of the wrong type is written
	// to a stream, such as text to a binary stream.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrIO is returned when the operating system reported a failure. The
	// underlying platform error is wrapped alongside it.
	ErrIO = errors.New("i/o error")

	// ErrCorruptState is returned when a stream lacks the metadata that every
	// opened stream carries, i.e. it was not constructed by a [Handler].
	ErrCorruptState = errors.New("corrupt File")
)
