package fileio

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"runtime"

	"github.com/desertwitch/krkio/internal/platform"
	"github.com/desertwitch/krkio/internal/resource"
)

// Entry is a single entry of a [DirectoryStream].
type Entry struct {
	Name  string
	Inode uint64
}

type dirNative struct {
	dir  platform.NativeDir
	path string
	done bool
}

func releaseDir(n *dirNative) error {
	slog.Debug("Released directory:",
		"path", n.path,
	)

	return n.dir.Close() //nolint:wrapcheck
}

// DirectoryStream is an open directory, yielding its entries (including "."
// and "..") one at a time. The sequence can not be restarted: once exhausted
// or closed, [DirectoryStream.Next] keeps reporting the end of the stream.
//
// A DirectoryStream not constructed by a [Handler] behaves as a closed one.
type DirectoryStream struct {
	handle *resource.Handle[*dirNative]
	path   string
}

func newDirectoryStream(dir platform.NativeDir, tracker *resource.Tracker, path string) *DirectoryStream {
	d := &DirectoryStream{
		handle: resource.New(&dirNative{dir: dir, path: path}, releaseDir,
			resource.WithLabel(path),
			resource.WithTracker(tracker),
		),
		path: path,
	}
	resource.Attach(d, d.handle)

	return d
}

// Path returns the path the directory was opened from.
func (d *DirectoryStream) Path() string {
	return d.path
}

// Closed returns true if the directory stream is closed.
func (d *DirectoryStream) Closed() bool {
	if d == nil {
		return true
	}

	return d.handle.State() == resource.StateClosed
}

// Next returns the next entry. At the end of the stream, or on a closed
// stream, ok is false.
func (d *DirectoryStream) Next() (Entry, bool, error) {
	defer runtime.KeepAlive(d)

	if d == nil {
		return Entry{}, false, nil
	}

	n, ok := d.handle.Get()
	if !ok || n.done {
		return Entry{}, false, nil
	}

	e, err := n.dir.ReadEntry()
	if errors.Is(err, io.EOF) {
		n.done = true

		return Entry{}, false, nil
	} else if err != nil {
		return Entry{}, false, fmt.Errorf("(fileio-readdir) %s: %w: readdir: %w", d.path, ErrIO, err)
	}

	return Entry(e), true, nil
}

// Entries returns an iterator over the remaining entries. Iteration stops
// after the first error, which is yielded alongside a zero [Entry].
func (d *DirectoryStream) Entries() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for {
			e, ok, err := d.Next()
			if err != nil {
				yield(Entry{}, err)

				return
			}
			if !ok {
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Close releases the native directory stream. Closing an already closed
// stream does nothing.
func (d *DirectoryStream) Close() error {
	if d == nil {
		return nil
	}

	if err := d.handle.Close(); err != nil {
		return fmt.Errorf("(fileio-closedir) %s: %w: %w", d.path, ErrIO, err)
	}

	return nil
}

// Describe returns a textual description of the directory stream.
func (d *DirectoryStream) Describe() (string, error) {
	if d == nil || d.handle == nil {
		return "", fmt.Errorf("(fileio-describe) %w", ErrCorruptState)
	}

	return fmt.Sprintf("<%s directory '%s' at %#x>", d.handle.State(), d.path, d.handle.ID()), nil
}

// String implements [fmt.Stringer].
func (d *DirectoryStream) String() string {
	desc, err := d.Describe()
	if err != nil {
		return "<corrupt directory>"
	}

	return desc
}
