package platform

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// Billy is an implementation of [FileSystem] backed by a go-billy filesystem.
// Where the filesystem does not expose inode numbers, they are derived from
// the entry paths.
type Billy struct {
	bfs billy.Filesystem
}

// NewBilly returns a pointer to a new [Billy] wrapping the given filesystem.
func NewBilly(bfs billy.Filesystem) *Billy {
	return &Billy{bfs: bfs}
}

// NewMemory returns a pointer to a new [Billy] backed by an empty in-memory
// filesystem.
func NewMemory() *Billy {
	return &Billy{bfs: memfs.New()}
}

// NewChroot returns a pointer to a new [Billy] backed by the operating system
// filesystem, with all paths resolved relative to root.
func NewChroot(root string) *Billy {
	return &Billy{bfs: osfs.New(root)}
}

// Unwrap returns the underlying go-billy filesystem.
func (b *Billy) Unwrap() billy.Filesystem {
	return b.bfs
}

// OpenFile wraps around [billy.Filesystem.OpenFile].
func (b *Billy) OpenFile(name string, flag int, perm os.FileMode) (NativeFile, error) {
	f, err := b.bfs.OpenFile(normalize(name), flag, perm)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return f, nil
}

// OpenDir reads the directory listing up front (go-billy has no streaming
// directory reads) and returns it as a directory stream.
func (b *Billy) OpenDir(name string) (NativeDir, error) {
	dir := normalize(name)

	info, err := b.bfs.Stat(dir)
	if err != nil {
		return nil, &os.PathError{Op: "opendir", Path: name, Err: unwrapPathError(err)}
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "opendir", Path: name, Err: syscall.ENOTDIR}
	}

	infos, err := b.bfs.ReadDir(dir)
	if err != nil {
		return nil, &os.PathError{Op: "opendir", Path: name, Err: unwrapPathError(err)}
	}

	entries := make([]DirEntry, 0, len(infos)+2) //nolint:mnd
	entries = append(entries,
		DirEntry{Name: ".", Inode: inodeOf(info, dir)},
		DirEntry{Name: "..", Inode: b.inode(path.Dir(dir))},
	)

	for _, fi := range infos {
		entries = append(entries, DirEntry{
			Name:  fi.Name(),
			Inode: inodeOf(fi, path.Join(dir, fi.Name())),
		})
	}

	return &listingStream{entries: entries}, nil
}

func (b *Billy) inode(name string) uint64 {
	info, err := b.bfs.Stat(name)
	if err != nil {
		return synthInode(name)
	}

	return inodeOf(info, name)
}

// listingStream is a directory stream over a listing that was read in full.
type listingStream struct {
	entries []DirEntry
	closed  bool
}

func (l *listingStream) ReadEntry() (DirEntry, error) {
	if l.closed {
		return DirEntry{}, ErrStreamClosed
	}

	if len(l.entries) == 0 {
		return DirEntry{}, io.EOF
	}

	entry := l.entries[0]
	l.entries = l.entries[1:]

	return entry, nil
}

func (l *listingStream) Close() error {
	l.closed = true
	l.entries = nil

	return nil
}

// normalize converts paths to use forward slashes consistently.
func normalize(name string) string {
	return filepath.ToSlash(filepath.Clean(name))
}
