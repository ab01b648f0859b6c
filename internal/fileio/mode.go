package fileio

import (
	"fmt"
	"os"
	"strings"
	"syscall"
)

// Kind is the payload kind of a stream.
type Kind int

const (
	// KindText streams exchange payloads as strings.
	KindText Kind = iota

	// KindBinary streams exchange payloads as raw bytes.
	KindBinary
)

// String returns a textual representation of the [Kind].
func (k Kind) String() string {
	if k == KindBinary {
		return "binary"
	}

	return "text"
}

func (k Kind) payloadName() string {
	if k == KindBinary {
		return "bytes"
	}

	return "string"
}

const binarySuffix = 'b'

// openMode is a parsed mode string.
type openMode struct {
	flag     int
	kind     Kind
	readable bool
	writable bool
}

//nolint:gochecknoglobals
var nativeModes = map[string]openMode{
	"r":   {flag: os.O_RDONLY, readable: true},
	"w":   {flag: os.O_WRONLY | os.O_CREATE | os.O_TRUNC, writable: true},
	"wx":  {flag: os.O_WRONLY | os.O_CREATE | os.O_TRUNC | os.O_EXCL, writable: true},
	"a":   {flag: os.O_WRONLY | os.O_CREATE | os.O_APPEND, writable: true},
	"r+":  {flag: os.O_RDWR, readable: true, writable: true},
	"w+":  {flag: os.O_RDWR | os.O_CREATE | os.O_TRUNC, readable: true, writable: true},
	"w+x": {flag: os.O_RDWR | os.O_CREATE | os.O_TRUNC | os.O_EXCL, readable: true, writable: true},
	"a+":  {flag: os.O_RDWR | os.O_CREATE | os.O_APPEND, readable: true, writable: true},
}

// parseMode parses an fopen-style mode string. A trailing 'b' selects a binary
// stream and is not part of the native mode, a 'b' in any other position is a
// usage error. Unknown native modes are rejected the way fopen rejects them.
func parseMode(mode string) (openMode, error) {
	if mode == "" {
		return openMode{}, fmt.Errorf("(fileio-mode) mode must not be empty: %w", ErrUsage)
	}

	kind := KindText
	native := mode

	if native[len(native)-1] == binarySuffix {
		kind = KindBinary
		native = native[:len(native)-1]
	}

	if strings.IndexByte(native, binarySuffix) >= 0 {
		return openMode{}, fmt.Errorf("(fileio-mode) %q: 'b' must be the last character of the mode: %w", mode, ErrUsage)
	}

	m, ok := nativeModes[native]
	if !ok {
		return openMode{}, fmt.Errorf("(fileio-mode) %w: failed to open file; system returned: %q: %w",
			ErrIO, mode, syscall.EINVAL)
	}
	m.kind = kind

	return m, nil
}
