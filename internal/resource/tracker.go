package resource

import (
	"errors"
	"sort"
	"sync"
)

// closer is the part of a [Handle] that a [Tracker] needs, independent of the
// type of the native handle.
type closer interface {
	ID() uint64
	Label() string
	Close() error
}

// Tracker keeps account of all open handles registered with it, so that any
// handle still open at shutdown can be released deterministically.
type Tracker struct {
	sync.Mutex
	live map[uint64]closer
}

// NewTracker returns a pointer to a new, empty [Tracker].
func NewTracker() *Tracker {
	return &Tracker{
		live: make(map[uint64]closer),
	}
}

func (t *Tracker) register(c closer) {
	t.Lock()
	defer t.Unlock()

	t.live[c.ID()] = c
}

func (t *Tracker) deregister(id uint64) {
	t.Lock()
	defer t.Unlock()

	delete(t.live, id)
}

// Live returns the amount of registered handles that are still open.
func (t *Tracker) Live() int {
	t.Lock()
	defer t.Unlock()

	return len(t.live)
}

// Labels returns the labels of all open handles, in order of creation.
func (t *Tracker) Labels() []string {
	open := t.snapshot()

	labels := make([]string, 0, len(open))
	for _, c := range open {
		labels = append(labels, c.Label())
	}

	return labels
}

// CloseAll closes every handle that is still open, in order of creation. All
// handles are closed even if some fail, the errors are joined.
func (t *Tracker) CloseAll() error {
	var errs []error

	for _, c := range t.snapshot() {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (t *Tracker) snapshot() []closer {
	t.Lock()
	open := make([]closer, 0, len(t.live))
	for _, c := range t.live {
		open = append(open, c)
	}
	t.Unlock()

	sort.Slice(open, func(i, j int) bool {
		return open[i].ID() < open[j].ID()
	})

	return open
}
