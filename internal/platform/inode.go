package platform

import (
	"hash/fnv"
	"os"
	"path"
	"path/filepath"
)

// inodeOf returns the inode number of a file, or a stable number derived from
// its path if the file information carries none (e.g. for in-memory files).
func inodeOf(info os.FileInfo, name string) uint64 {
	if ino, ok := statInode(info); ok {
		return ino
	}

	return synthInode(name)
}

// synthInode derives a non-zero inode number from a path.
func synthInode(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path.Clean(filepath.ToSlash(name))))

	if ino := h.Sum64(); ino != 0 {
		return ino
	}

	return 1
}
