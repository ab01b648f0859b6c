package platform

import (
	"os"
)

// OS is an implementation of [FileSystem] wrapping operating system functions.
type OS struct{}

// OpenFile wraps around [os.OpenFile].
func (*OS) OpenFile(name string, flag int, perm os.FileMode) (NativeFile, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return f, nil
}
