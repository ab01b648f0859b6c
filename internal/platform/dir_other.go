//go:build !linux

package platform

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

const readdirBatchSize = 64

// readdirStream is a directory stream on top of [os.File.ReadDir], which skips
// the dot entries, so they are synthesized ahead of the real entries.
type readdirStream struct {
	f       *os.File
	path    string
	pending []DirEntry
	eof     bool
}

// OpenDir opens a directory stream using [os.File.ReadDir].
func (*OS) OpenDir(name string) (NativeDir, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, &os.PathError{Op: "opendir", Path: name, Err: unwrapPathError(err)}
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, &os.PathError{Op: "opendir", Path: name, Err: unwrapPathError(err)}
	}

	if !info.IsDir() {
		_ = f.Close()

		return nil, &os.PathError{Op: "opendir", Path: name, Err: syscall.ENOTDIR}
	}

	d := &readdirStream{f: f, path: name}
	d.pending = append(d.pending,
		DirEntry{Name: ".", Inode: inodeOf(info, name)},
		DirEntry{Name: "..", Inode: d.inode("..")},
	)

	return d, nil
}

// ReadEntry returns the next entry of the directory stream.
func (d *readdirStream) ReadEntry() (DirEntry, error) {
	if d.f == nil {
		return DirEntry{}, ErrStreamClosed
	}

	for len(d.pending) == 0 {
		if d.eof {
			return DirEntry{}, io.EOF
		}

		entries, err := d.f.ReadDir(readdirBatchSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return DirEntry{}, fmt.Errorf("(platform-readdir) %w", err)
		}
		if len(entries) == 0 {
			d.eof = true

			continue
		}

		for _, e := range entries {
			d.pending = append(d.pending, DirEntry{Name: e.Name(), Inode: d.inode(e.Name())})
		}
	}

	entry := d.pending[0]
	d.pending = d.pending[1:]

	return entry, nil
}

func (d *readdirStream) inode(name string) uint64 {
	full := filepath.Join(d.path, name)

	info, err := os.Lstat(full)
	if err != nil {
		return synthInode(full)
	}

	return inodeOf(info, full)
}

// Close releases the file handle of the directory stream.
func (d *readdirStream) Close() error {
	if d.f == nil {
		return nil
	}

	f := d.f
	d.f = nil
	d.pending = nil

	if err := f.Close(); err != nil {
		return fmt.Errorf("(platform-closedir) %w", err)
	}

	return nil
}
