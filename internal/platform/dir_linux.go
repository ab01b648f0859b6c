//go:build linux

package platform

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// linux_dirent64 offsets (from linux/dirent.h):
//
//	struct linux_dirent64 {
//	    ino64_t        d_ino;    // 8 bytes  (offset 0)
//	    off64_t        d_off;    // 8 bytes  (offset 8)
//	    unsigned short d_reclen; // 2 bytes  (offset 16)
//	    unsigned char  d_type;   // 1 byte   (offset 18)
//	    char           d_name[]; // variable (offset 19)
//	};
const (
	direntInoOffset    = 0
	direntReclenOffset = 16
	direntNameOffset   = 19
	direntMinSize      = direntNameOffset

	direntBufferSize = 8192
)

// direntStream is a directory stream reading raw getdents64 records, which
// (unlike [os.File.ReadDir]) carry the inode number and the dot entries.
type direntStream struct {
	fd   int
	buf  []byte
	data []byte
	eof  bool
}

// OpenDir opens a directory stream using getdents64.
func (*OS) OpenDir(name string) (NativeDir, error) {
	for {
		fd, err := unix.Open(name, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return nil, &os.PathError{Op: "opendir", Path: name, Err: err}
		}

		return &direntStream{
			fd:  fd,
			buf: make([]byte, direntBufferSize),
		}, nil
	}
}

// ReadEntry returns the next entry of the directory stream.
func (d *direntStream) ReadEntry() (DirEntry, error) {
	if d.fd < 0 {
		return DirEntry{}, ErrStreamClosed
	}

	for {
		for len(d.data) > 0 {
			entry, ok, err := d.parse()
			if err != nil {
				return DirEntry{}, err
			}
			if ok {
				return entry, nil
			}
		}

		if d.eof {
			return DirEntry{}, io.EOF
		}

		if err := d.fill(); err != nil {
			return DirEntry{}, err
		}
	}
}

func (d *direntStream) fill() error {
	for {
		n, err := unix.ReadDirent(d.fd, d.buf)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("(platform-readdir) %w", err)
		}

		if n <= 0 {
			d.eof = true
			d.data = nil

			return nil
		}

		d.data = d.buf[:n]

		return nil
	}
}

// parse consumes one record from the buffered data. Records without an inode
// belong to deleted entries and are skipped (ok is false).
func (d *direntStream) parse() (DirEntry, bool, error) {
	if len(d.data) < direntMinSize {
		return DirEntry{}, false, ErrInvalidDirent
	}

	reclen := int(binary.NativeEndian.Uint16(d.data[direntReclenOffset:]))
	if reclen < direntMinSize || reclen > len(d.data) {
		return DirEntry{}, false, ErrInvalidDirent
	}

	record := d.data[:reclen]
	d.data = d.data[reclen:]

	ino := binary.NativeEndian.Uint64(record[direntInoOffset:])
	if ino == 0 {
		return DirEntry{}, false, nil
	}

	name := record[direntNameOffset:]
	for i, b := range name {
		if b == 0 {
			name = name[:i]

			break
		}
	}

	if len(name) == 0 {
		return DirEntry{}, false, nil
	}

	return DirEntry{Name: string(name), Inode: ino}, true, nil
}

// Close releases the file descriptor of the directory stream.
func (d *direntStream) Close() error {
	if d.fd < 0 {
		return nil
	}

	fd := d.fd
	d.fd = -1
	d.data = nil

	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("(platform-closedir) %w", err)
	}

	return nil
}
