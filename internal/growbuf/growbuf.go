// Package growbuf implements incremental reads of unknown final length into a
// doubling scratch buffer, either up to a delimiter (line mode) or until the
// source is exhausted (bulk mode).
package growbuf

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

const (
	// ChunkSize is the default amount of bytes a [Reader] reserves ahead of
	// the current write position before it fills the scratch buffer.
	ChunkSize = 1024

	// Delimiter is the byte that terminates a line in line mode.
	Delimiter = '\n'

	// maxPooledCapacity is the largest scratch buffer that is handed back to
	// the pool after a read, larger ones are left to the garbage collector.
	maxPooledCapacity = 1 << 20

	// maxEmptyReads is the number of consecutive (0, nil) reads tolerated from
	// a source before giving up with [io.ErrNoProgress].
	maxEmptyReads = 100
)

// Reader performs line and bulk reads with a doubling scratch buffer. The zero
// value is ready to use and reads in chunks of [ChunkSize]. A Reader is safe
// for concurrent use, as all per-read state lives on the stack of the call.
type Reader struct {
	// ChunkSize overrides [ChunkSize] when positive.
	ChunkSize int

	// OnGrow is called (when non-nil) every time the scratch capacity grows.
	OnGrow func(capacity int)

	pool sync.Pool
}

// scratch is the per-read state of the doubling algorithm.
type scratch struct {
	buf      []byte
	capacity int
	size     int
}

// New returns a pointer to a new [Reader] using the given chunk size.
func New(chunkSize int) *Reader {
	return &Reader{ChunkSize: chunkSize}
}

func (r *Reader) chunk() int {
	if r.ChunkSize > 0 {
		return r.ChunkSize
	}

	return ChunkSize
}

func (r *Reader) acquire() *scratch {
	if s, ok := r.pool.Get().(*scratch); ok {
		s.capacity = 0
		s.size = 0

		return s
	}

	return &scratch{}
}

func (r *Reader) release(s *scratch) {
	if cap(s.buf) > maxPooledCapacity {
		s.buf = nil
	}
	s.capacity = 0
	s.size = 0
	r.pool.Put(s)
}

// ensure makes room for at least one more chunk after the current write
// position, doubling the logical capacity (or starting at two chunks).
func (r *Reader) ensure(s *scratch) {
	chunk := r.chunk()
	if s.capacity >= s.size+chunk {
		return
	}

	if s.capacity == 0 {
		s.capacity = 2 * chunk
	} else {
		s.capacity *= 2
	}

	if cap(s.buf) < s.capacity {
		grown := make([]byte, s.capacity)
		copy(grown, s.buf[:s.size])
		s.buf = grown
	} else {
		s.buf = s.buf[:s.capacity]
	}

	if r.OnGrow != nil {
		r.OnGrow(s.capacity)
	}
}

// result copies the accumulated bytes into a right-sized slice.
func (s *scratch) result() []byte {
	out := make([]byte, s.size)
	copy(out, s.buf[:s.size])

	return out
}

// ReadLine reads from src one byte at a time until [Delimiter] was read
// (it is included in the result) or src is exhausted. If src is exhausted
// before a single byte was read, [ErrNoData] is returned. Any other error of
// src is returned as is and the partially read line is discarded.
func (r *Reader) ReadLine(src io.ByteReader) ([]byte, error) {
	s := r.acquire()
	defer r.release(s)

	for {
		r.ensure(s)

		for s.size < s.capacity {
			c, err := src.ReadByte()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return s.line()
				}

				return nil, fmt.Errorf("(growbuf-line) %w", err)
			}

			s.buf[s.size] = c
			s.size++

			if c == Delimiter {
				return s.line()
			}
		}
	}
}

func (s *scratch) line() ([]byte, error) {
	if s.size == 0 {
		return nil, ErrNoData
	}

	return s.result(), nil
}

// ReadAll reads from src chunk by chunk until it is exhausted. Short reads are
// not errors, but any error other than [io.EOF] is returned and all bytes read
// up to then are discarded. An exhausted src yields an empty, non-nil slice.
func (r *Reader) ReadAll(src io.Reader) ([]byte, error) {
	s := r.acquire()
	defer r.release(s)

	chunk := r.chunk()
	emptyReads := 0

	for {
		r.ensure(s)

		n, err := src.Read(s.buf[s.size : s.size+chunk])
		s.size += n

		if err != nil {
			if errors.Is(err, io.EOF) {
				return s.result(), nil
			}

			return nil, fmt.Errorf("(growbuf-all) %w", err)
		}

		if n == 0 {
			emptyReads++
			if emptyReads >= maxEmptyReads {
				return nil, fmt.Errorf("(growbuf-all) %w", io.ErrNoProgress)
			}

			continue
		}
		emptyReads = 0
	}
}

//nolint:gochecknoglobals
var defaultReader = &Reader{}

// ReadLine is [Reader.ReadLine] with the default chunk size.
func ReadLine(src io.ByteReader) ([]byte, error) {
	return defaultReader.ReadLine(src)
}

// ReadAll is [Reader.ReadAll] with the default chunk size.
func ReadAll(src io.Reader) ([]byte, error) {
	return defaultReader.ReadAll(src)
}
