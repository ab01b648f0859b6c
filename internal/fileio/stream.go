package fileio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/desertwitch/krkio/internal/growbuf"
	"github.com/desertwitch/krkio/internal/platform"
	"github.com/desertwitch/krkio/internal/resource"
)

// Payload is the set of payload types a [Stream] can exchange.
type Payload interface {
	string | []byte
}

// FileStream is a stream exchanging text payloads.
type FileStream = Stream[string]

// BinaryStream is a stream exchanging raw byte payloads.
type BinaryStream = Stream[[]byte]

// File is the payload-agnostic view of an open stream. Typed access is
// available by asserting to [*FileStream] or [*BinaryStream].
type File interface {
	io.Closer
	fmt.Stringer

	Path() string
	Mode() string
	Kind() Kind
	Closed() bool
	Describe() (string, error)
	Flush() error

	// WriteValue writes v if it is of the payload type of the stream.
	WriteValue(v any) (int, error)

	// ReadLineValue is ReadLine with the payload returned as any, it is nil
	// whenever ok is false.
	ReadLineValue() (line any, ok bool, err error)

	// ReadAllValue is ReadAll with the payload returned as any, it is nil
	// whenever ok is false.
	ReadAllValue() (data any, ok bool, err error)

	// ReadLinesValue is ReadLines with the payloads returned as any.
	ReadLinesValue() ([]any, error)
}

// native is the state behind the [resource.Handle] of a stream: the native
// file handle and the buffering on top of it.
type native struct {
	file platform.NativeFile
	r    *bufio.Reader
	w    *bufio.Writer

	readable  bool
	writable  bool
	eof       bool
	std       bool
	autoflush bool
}

func (n *native) reader() *bufio.Reader {
	if n.r == nil {
		n.r = bufio.NewReader(n.file)
	}

	return n.r
}

func (n *native) writer() *bufio.Writer {
	if n.w == nil {
		n.w = bufio.NewWriter(n.file)
	}

	return n.w
}

// flushPending writes out buffered payloads ahead of a read.
func (n *native) flushPending() error {
	if n.w == nil || n.w.Buffered() == 0 {
		return nil
	}

	return n.w.Flush() //nolint:wrapcheck
}

// releaseNative flushes the stream and closes the native file handle, except
// for the standard streams of the process, which are only flushed.
func releaseNative(n *native) error {
	var errs []error

	if n.w != nil {
		if err := n.w.Flush(); err != nil {
			errs = append(errs, err)
		}
	}

	if !n.std {
		if err := n.file.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	slog.Debug("Released file:",
		"name", n.file.Name(),
		"std", n.std,
	)

	return errors.Join(errs...)
}

// Stream is an open file exchanging payloads of type P. It is either open or
// closed. Every operation on a closed stream is a no-op: reads return ok as
// false and writes report zero bytes, without an error. Once a read has
// observed the end of the file, all following reads return ok as false.
//
// A stream not constructed by a [Handler] behaves as a closed one. A stream is
// not safe for concurrent use, but an unreachable stream may be released by
// the garbage collector at any time.
type Stream[P Payload] struct {
	handle *resource.Handle[*native]
	reader *growbuf.Reader
	path   string
	mode   string
}

func newStream[P Payload](n *native, reader *growbuf.Reader, tracker *resource.Tracker, path, mode string) *Stream[P] {
	s := &Stream[P]{
		handle: resource.New(n, releaseNative,
			resource.WithLabel(path),
			resource.WithTracker(tracker),
		),
		reader: reader,
		path:   path,
		mode:   mode,
	}
	resource.Attach(s, s.handle)

	return s
}

func kindOf[P Payload]() Kind {
	var zero P
	if _, ok := any(zero).([]byte); ok {
		return KindBinary
	}

	return KindText
}

func (s *Stream[P]) acquire() (*native, bool) {
	if s == nil {
		return nil, false
	}

	return s.handle.Get()
}

// Path returns the path the stream was opened from, or the label of a
// standard stream.
func (s *Stream[P]) Path() string {
	return s.path
}

// Mode returns the mode string the stream was opened with.
func (s *Stream[P]) Mode() string {
	return s.mode
}

// Kind returns the payload kind of the stream.
func (s *Stream[P]) Kind() Kind {
	return kindOf[P]()
}

// Closed returns true if the stream is closed.
func (s *Stream[P]) Closed() bool {
	if s == nil {
		return true
	}

	return s.handle.State() == resource.StateClosed
}

// ReadLine reads the next line, including its line feed (the last line of a
// file may lack one). At the end of the file ok is false.
func (s *Stream[P]) ReadLine() (P, bool, error) {
	defer runtime.KeepAlive(s)

	var zero P

	n, ok := s.acquire()
	if !ok || n.eof || !n.readable {
		return zero, false, nil
	}

	if err := n.prepareRead(); err != nil {
		return zero, false, fmt.Errorf("(fileio-readline) %s: %w", s.path, err)
	}

	line, err := s.reader.ReadLine(n.reader())
	if errors.Is(err, growbuf.ErrNoData) {
		n.eof = true

		return zero, false, nil
	} else if err != nil {
		return zero, false, fmt.Errorf("(fileio-readline) %s: %w: read error: %w", s.path, ErrIO, err)
	}

	return P(line), true, nil
}

// ReadLines reads all remaining lines. A closed stream or one at the end of
// the file yields no lines.
func (s *Stream[P]) ReadLines() ([]P, error) {
	var lines []P

	for {
		line, ok, err := s.ReadLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			return lines, nil
		}
		lines = append(lines, line)
	}
}

// ReadAll reads everything up to the end of the file. An empty file yields an
// empty payload, but once the end of the file was observed ok is false.
func (s *Stream[P]) ReadAll() (P, bool, error) {
	defer runtime.KeepAlive(s)

	var zero P

	n, ok := s.acquire()
	if !ok || n.eof || !n.readable {
		return zero, false, nil
	}

	if err := n.prepareRead(); err != nil {
		return zero, false, fmt.Errorf("(fileio-readall) %s: %w", s.path, err)
	}

	data, err := s.reader.ReadAll(n.reader())
	if err != nil {
		return zero, false, fmt.Errorf("(fileio-readall) %s: %w: read error: %w", s.path, ErrIO, err)
	}
	n.eof = true

	return P(data), true, nil
}

func (n *native) prepareRead() error {
	if err := n.flushPending(); err != nil {
		return fmt.Errorf("%w: write error: %w", ErrIO, err)
	}

	return nil
}

// Write writes the full payload and returns the number of bytes written.
// Writes are buffered until [Stream.Flush] or [Stream.Close], except on the
// standard streams. Nothing is written to a closed or read-only stream, nor
// once a read has observed the end of the file.
func (s *Stream[P]) Write(p P) (int, error) {
	defer runtime.KeepAlive(s)

	n, ok := s.acquire()
	if !ok || n.eof || !n.writable {
		return 0, nil
	}

	var (
		written int
		err     error
	)
	switch v := any(p).(type) {
	case string:
		written, err = n.writer().WriteString(v)
	case []byte:
		written, err = n.writer().Write(v)
	}
	if err != nil {
		return written, fmt.Errorf("(fileio-write) %s: %w: write error: %w", s.path, ErrIO, err)
	}

	if n.autoflush {
		if err := n.w.Flush(); err != nil {
			return written, fmt.Errorf("(fileio-write) %s: %w: write error: %w", s.path, ErrIO, err)
		}
	}

	return written, nil
}

// WriteValue writes v, which must be of the payload type of the stream.
func (s *Stream[P]) WriteValue(v any) (int, error) {
	p, ok := v.(P)
	if !ok {
		return 0, fmt.Errorf("(fileio-write) write: expected %s, got %T: %w",
			kindOf[P]().payloadName(), v, ErrTypeMismatch)
	}

	return s.Write(p)
}

// ReadLineValue implements [File].
func (s *Stream[P]) ReadLineValue() (any, bool, error) {
	line, ok, err := s.ReadLine()
	if !ok {
		return nil, false, err
	}

	return line, true, nil
}

// ReadAllValue implements [File].
func (s *Stream[P]) ReadAllValue() (any, bool, error) {
	data, ok, err := s.ReadAll()
	if !ok {
		return nil, false, err
	}

	return data, true, nil
}

// ReadLinesValue implements [File].
func (s *Stream[P]) ReadLinesValue() ([]any, error) {
	lines, err := s.ReadLines()
	if err != nil {
		return nil, err
	}

	values := make([]any, 0, len(lines))
	for _, line := range lines {
		values = append(values, line)
	}

	return values, nil
}

// Flush writes out all buffered payloads.
func (s *Stream[P]) Flush() error {
	defer runtime.KeepAlive(s)

	n, ok := s.acquire()
	if !ok || n.w == nil {
		return nil
	}

	if err := n.w.Flush(); err != nil {
		return fmt.Errorf("(fileio-flush) %s: %w: write error: %w", s.path, ErrIO, err)
	}

	return nil
}

// Close flushes the stream and releases the native file handle. Closing an
// already closed stream does nothing.
func (s *Stream[P]) Close() error {
	if s == nil {
		return nil
	}

	if err := s.handle.Close(); err != nil {
		return fmt.Errorf("(fileio-close) %s: %w: %w", s.path, ErrIO, err)
	}

	return nil
}

// Describe returns a textual description of the stream.
func (s *Stream[P]) Describe() (string, error) {
	if s == nil || s.handle == nil || s.mode == "" {
		return "", fmt.Errorf("(fileio-describe) %w", ErrCorruptState)
	}

	return fmt.Sprintf("<%s file '%s', mode '%s' at %#x>",
		s.handle.State(), s.path, s.mode, s.handle.ID()), nil
}

// String implements [fmt.Stringer].
func (s *Stream[P]) String() string {
	desc, err := s.Describe()
	if err != nil {
		return "<corrupt file>"
	}

	return desc
}
