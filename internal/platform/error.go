package platform

import (
	"errors"
	"os"
)

var (
	// ErrInvalidDirent is returned when a directory record returned by the
	// operating system could not be parsed.
	ErrInvalidDirent = errors.New("invalid directory record")

	// ErrStreamClosed is returned when reading from a directory stream that
	// was already closed.
	ErrStreamClosed = errors.New("directory stream is closed")

	// ErrSystem is returned when the operating system rejected an operation
	// on the process state, such as changing the working directory.
	ErrSystem = errors.New("operating system error")
)

// unwrapPathError returns the underlying error of an [os.PathError], so that
// it can be wrapped again with the operation of this package.
func unwrapPathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}

	return err
}
