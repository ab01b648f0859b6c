// Package fileio implements file and directory streams on top of native
// handles, with exactly-once release of every handle through either an
// explicit close or the garbage collector.
//
// Streams are opened through a [Handler] with fopen-style mode strings. A
// trailing 'b' in the mode selects a [BinaryStream] exchanging raw bytes,
// otherwise a [FileStream] exchanging strings is returned.
package fileio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/desertwitch/krkio/internal/growbuf"
	"github.com/desertwitch/krkio/internal/platform"
	"github.com/desertwitch/krkio/internal/resource"
	"github.com/dustin/go-humanize"
)

const (
	// DefaultMode is the mode used by [Handler.OpenDefault].
	DefaultMode = "r"

	// StdinLabel is the path label of the standard input stream.
	StdinLabel = "<stdin>"

	// StdoutLabel is the path label of the standard output stream.
	StdoutLabel = "<stdout>"

	// StderrLabel is the path label of the standard error stream.
	StderrLabel = "<stderr>"

	defaultPerm os.FileMode = 0o666
)

// Handler is the principal implementation for opening streams. All streams
// opened through a Handler share its read buffers and are registered with its
// [resource.Tracker] until they are closed.
type Handler struct {
	fs      platform.FileSystem
	reader  *growbuf.Reader
	tracker *resource.Tracker

	stdin  *FileStream
	stdout *FileStream
	stderr *FileStream
}

// Option configures a [Handler] on construction.
type Option func(*config)

type config struct {
	chunkSize int
	tracker   *resource.Tracker
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
}

// WithChunkSize sets the chunk size of the read buffers.
func WithChunkSize(size int) Option {
	return func(c *config) {
		c.chunkSize = size
	}
}

// WithTracker sets the [resource.Tracker] the opened streams register with.
func WithTracker(tracker *resource.Tracker) Option {
	return func(c *config) {
		c.tracker = tracker
	}
}

// WithStdio replaces the standard streams of the process.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(c *config) {
		c.stdin = stdin
		c.stdout = stdout
		c.stderr = stderr
	}
}

// NewHandler returns a pointer to a new [Handler] opening streams on the
// given filesystem.
func NewHandler(fs platform.FileSystem, opts ...Option) *Handler {
	c := &config{
		chunkSize: growbuf.ChunkSize,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tracker == nil {
		c.tracker = resource.NewTracker()
	}

	reader := growbuf.New(c.chunkSize)
	reader.OnGrow = func(capacity int) {
		slog.Debug("Growing read buffer:",
			"capacity", humanize.IBytes(uint64(capacity)), //nolint:gosec
		)
	}

	h := &Handler{
		fs:      fs,
		reader:  reader,
		tracker: c.tracker,
	}

	h.stdin = newStream[string](&native{
		file:     &stdFile{Reader: c.stdin, name: StdinLabel},
		readable: true,
		std:      true,
	}, reader, h.tracker, StdinLabel, "r")

	h.stdout = newStream[string](&native{
		file:      &stdFile{Writer: c.stdout, name: StdoutLabel},
		writable:  true,
		std:       true,
		autoflush: true,
	}, reader, h.tracker, StdoutLabel, "w")

	h.stderr = newStream[string](&native{
		file:      &stdFile{Writer: c.stderr, name: StderrLabel},
		writable:  true,
		std:       true,
		autoflush: true,
	}, reader, h.tracker, StderrLabel, "w")

	return h
}

// Stdin returns the standard input stream.
func (h *Handler) Stdin() *FileStream {
	return h.stdin
}

// Stdout returns the standard output stream. Writes are not buffered.
func (h *Handler) Stdout() *FileStream {
	return h.stdout
}

// Stderr returns the standard error stream. Writes are not buffered.
func (h *Handler) Stderr() *FileStream {
	return h.stderr
}

// Tracker returns the [resource.Tracker] all streams register with.
func (h *Handler) Tracker() *resource.Tracker {
	return h.tracker
}

// Open opens the file at path with an fopen-style mode string ("r", "w",
// "a", "r+", "w+", "a+", with an optional "x" after "w"). A trailing 'b' opens
// a [*BinaryStream], otherwise a [*FileStream] is returned.
func (h *Handler) Open(path, mode string) (File, error) {
	m, err := parseMode(mode)
	if err != nil {
		return nil, err
	}

	nf, err := h.fs.OpenFile(path, m.flag, defaultPerm)
	if err != nil {
		return nil, fmt.Errorf("(fileio-open) %w: failed to open file; system returned: %w", ErrIO, err)
	}

	n := &native{
		file:     nf,
		readable: m.readable,
		writable: m.writable,
	}

	slog.Debug("Opened file:",
		"path", path,
		"mode", mode,
		"kind", m.kind,
	)

	if m.kind == KindBinary {
		return newStream[[]byte](n, h.reader, h.tracker, path, mode), nil
	}

	return newStream[string](n, h.reader, h.tracker, path, mode), nil
}

// OpenDefault opens the file at path with [DefaultMode].
func (h *Handler) OpenDefault(path string) (File, error) {
	return h.Open(path, DefaultMode)
}

// OpenText opens the file at path with a text mode string.
func (h *Handler) OpenText(path, mode string) (*FileStream, error) {
	f, err := h.Open(path, mode)
	if err != nil {
		return nil, err
	}

	s, ok := f.(*FileStream)
	if !ok {
		_ = f.Close()

		return nil, fmt.Errorf("(fileio-open) %q is a binary mode: %w", mode, ErrUsage)
	}

	return s, nil
}

// OpenBinary opens the file at path with a binary mode string.
func (h *Handler) OpenBinary(path, mode string) (*BinaryStream, error) {
	f, err := h.Open(path, mode)
	if err != nil {
		return nil, err
	}

	s, ok := f.(*BinaryStream)
	if !ok {
		_ = f.Close()

		return nil, fmt.Errorf("(fileio-open) %q is a text mode: %w", mode, ErrUsage)
	}

	return s, nil
}

// OpenDir opens the directory at path.
func (h *Handler) OpenDir(path string) (*DirectoryStream, error) {
	dir, err := h.fs.OpenDir(path)
	if err != nil {
		return nil, fmt.Errorf("(fileio-opendir) %w: opendir: %w", ErrIO, err)
	}

	slog.Debug("Opened directory:",
		"path", path,
	)

	return newDirectoryStream(dir, h.tracker, path), nil
}

// Shutdown flushes the standard streams and then closes every stream that is
// still open, the standard streams included.
func (h *Handler) Shutdown() error {
	var errs []error

	for _, s := range []*FileStream{h.stdout, h.stderr} {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}

	if live := h.tracker.Live(); live > 0 {
		slog.Debug("Closing remaining open streams:",
			"count", live,
			"labels", h.tracker.Labels(),
		)
	}

	if err := h.tracker.CloseAll(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// stdFile adapts a standard stream of the process to a native file. It is
// never closed, the process owns the underlying descriptor.
type stdFile struct {
	io.Reader
	io.Writer
	name string
}

func (f *stdFile) Name() string {
	return f.name
}

func (f *stdFile) Close() error {
	return nil
}
