// Package resource implements the lifecycle of native operating system handles
// that are owned by garbage-collected wrapper objects.
//
// A [Handle] is either open or closed. Closing is idempotent, so an explicit
// close and a close triggered by the garbage collector (see [Attach]) can run in
// any order, while the release function reaches the operating system exactly
// once.
package resource

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

// State is the lifecycle state of a [Handle].
type State int32

const (
	// StateOpen is the initial state of a [Handle] holding a native handle.
	StateOpen State = iota

	// StateClosed is the terminal state of a [Handle], it is never reopened.
	StateClosed
)

// String returns a textual representation of the [State].
func (s State) String() string {
	if s == StateOpen {
		return "open"
	}

	return "closed"
}

// ReleaseFunc releases a native handle to the operating system.
type ReleaseFunc[T any] func(native T) error

// Handle is the lifecycle wrapper around one native handle of type T. The
// native handle is only reachable while the [Handle] is open.
type Handle[T any] struct {
	mu      sync.Mutex
	state   atomic.Int32
	native  T
	release ReleaseFunc[T]

	id      uint64
	label   string
	tracker *Tracker
	stop    func()
}

// Option configures a [Handle] on construction.
type Option func(*options)

type options struct {
	label   string
	tracker *Tracker
}

// WithLabel sets a diagnostic label, e.g. the path the native handle was opened
// from. It is used for logging only.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithTracker registers the [Handle] with a [Tracker] until it is closed.
func WithTracker(tracker *Tracker) Option {
	return func(o *options) {
		o.tracker = tracker
	}
}

//nolint:gochecknoglobals
var nextID atomic.Uint64

// New returns a pointer to a new open [Handle] owning native. The release
// function is called at most once, on the first transition to [StateClosed].
func New[T any](native T, release ReleaseFunc[T], opts ...Option) *Handle[T] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	h := &Handle[T]{
		native:  native,
		release: release,
		id:      nextID.Add(1),
		label:   o.label,
		tracker: o.tracker,
	}
	h.state.Store(int32(StateOpen))

	if h.tracker != nil {
		h.tracker.register(h)
	}

	return h
}

// ID returns the process-unique identifier of the [Handle].
func (h *Handle[T]) ID() uint64 {
	return h.id
}

// Label returns the diagnostic label of the [Handle].
func (h *Handle[T]) Label() string {
	return h.label
}

// State returns the current [State] of the [Handle].
func (h *Handle[T]) State() State {
	if h == nil {
		return StateClosed
	}

	return State(h.state.Load())
}

// Get returns the native handle and true while the [Handle] is open. On a
// closed (or nil) [Handle] it returns the zero value and false.
func (h *Handle[T]) Get() (T, bool) {
	var zero T
	if h == nil {
		return zero, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if State(h.state.Load()) != StateOpen {
		return zero, false
	}

	return h.native, true
}

// Close transitions the [Handle] to [StateClosed] and releases the native
// handle. Calling Close on an already closed (or nil) [Handle] does nothing and
// returns nil. The error of the release function is returned, the [Handle] is
// closed regardless.
func (h *Handle[T]) Close() error {
	if h == nil {
		return nil
	}

	h.mu.Lock()
	if !h.state.CompareAndSwap(int32(StateOpen), int32(StateClosed)) {
		h.mu.Unlock()

		return nil
	}

	native := h.native
	var zero T
	h.native = zero
	stop := h.stop
	h.stop = nil
	h.mu.Unlock()

	if stop != nil {
		stop()
	}

	if h.tracker != nil {
		h.tracker.deregister(h.id)
	}

	if h.release == nil {
		return nil
	}

	if err := h.release(native); err != nil {
		return fmt.Errorf("(resource-close) %w", err)
	}

	return nil
}

// Attach registers a cleanup on owner that closes h once owner became
// unreachable. The owner must hold the only long-lived reference to h, and h
// must not reference owner, otherwise owner is never collected.
func Attach[O any, T any](owner *O, h *Handle[T]) {
	cleanup := runtime.AddCleanup(owner, collect[T], h)

	h.mu.Lock()
	defer h.mu.Unlock()

	if State(h.state.Load()) != StateOpen {
		cleanup.Stop()

		return
	}
	h.stop = cleanup.Stop
}

func collect[T any](h *Handle[T]) {
	if h.State() == StateOpen {
		slog.Debug("Releasing unreachable handle:",
			"id", h.id,
			"label", h.label,
		)
	}

	if err := h.Close(); err != nil {
		slog.Warn("Failure releasing unreachable handle (was dropped)",
			"id", h.id,
			"label", h.label,
			"err", err,
		)
	}
}
