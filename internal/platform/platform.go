// Package platform contains the operating system primitives the managed
// resource types are built on: opening files, streaming directory entries,
// mutating the process environment and querying the process state ([System]).
// Every primitive is consumed through a
// small interface, so that the higher layers can run against the real
// operating system ([OS], [OSEnv]), a go-billy filesystem ([Billy]) or an
// in-memory environment ([MapEnv]).
package platform

import (
	"io"
	"os"
)

// NativeFile is an open native file handle.
type NativeFile interface {
	io.Reader
	io.Writer
	io.Closer
	Name() string
}

// FileOpener opens native file handles, with flags as for [os.OpenFile].
type FileOpener interface {
	OpenFile(name string, flag int, perm os.FileMode) (NativeFile, error)
}

// DirEntry is a single entry of a directory stream.
type DirEntry struct {
	Name  string
	Inode uint64
}

// NativeDir is an open native directory stream. ReadEntry returns [io.EOF]
// once the stream is exhausted. Like readdir, the stream includes the "." and
// ".." entries.
type NativeDir interface {
	ReadEntry() (DirEntry, error)
	Close() error
}

// DirOpener opens native directory streams.
type DirOpener interface {
	OpenDir(name string) (NativeDir, error)
}

// FileSystem is a provider of both native file handles and directory streams.
type FileSystem interface {
	FileOpener
	DirOpener
}

// Environment is the process environment table.
type Environment interface {
	Environ() []string
	Setenv(key, value string) error
	Unsetenv(key string) error
}
