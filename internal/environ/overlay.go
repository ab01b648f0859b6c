// Package environ implements a live view of the process environment. An
// [Overlay] is a snapshot of the environment that is kept in sync with it:
// every mutation is applied to the platform first, and mirrored into the
// snapshot only once the platform accepted it.
package environ

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"syscall"

	"github.com/desertwitch/krkio/internal/platform"
)

// Reader reads "KEY=VALUE" configuration files into a map.
type Reader interface {
	Read(filenames ...string) (map[string]string, error)
}

// Overlay is the principal implementation of the environment view. It is safe
// for concurrent use.
type Overlay struct {
	sync.RWMutex
	env  platform.Environment
	vars map[string]string
}

// Load returns a pointer to a new [Overlay] holding a snapshot of the given
// environment. Entries without a "=" are skipped.
func Load(env platform.Environment) *Overlay {
	o := &Overlay{
		env:  env,
		vars: make(map[string]string),
	}

	for _, kv := range env.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		o.vars[key] = value
	}

	return o
}

// Get returns the value of the variable named by key, or an empty string.
func (o *Overlay) Get(key string) string {
	value, _ := o.Lookup(key)

	return value
}

// Lookup returns the value of the variable named by key and whether it is set.
func (o *Overlay) Lookup(key string) (string, bool) {
	o.RLock()
	defer o.RUnlock()

	value, ok := o.vars[key]

	return value, ok
}

// Len returns the amount of variables.
func (o *Overlay) Len() int {
	o.RLock()
	defer o.RUnlock()

	return len(o.vars)
}

// Keys returns the names of all variables, sorted.
func (o *Overlay) Keys() []string {
	o.RLock()
	defer o.RUnlock()

	return slices.Sorted(maps.Keys(o.vars))
}

// All returns an iterator over a snapshot of all variables, sorted by name.
func (o *Overlay) All() iter.Seq2[string, string] {
	snapshot := o.Snapshot()

	return func(yield func(string, string) bool) {
		for _, key := range slices.Sorted(maps.Keys(snapshot)) {
			if !yield(key, snapshot[key]) {
				return
			}
		}
	}
}

// Snapshot returns a copy of all variables.
func (o *Overlay) Snapshot() map[string]string {
	o.RLock()
	defer o.RUnlock()

	return maps.Clone(o.vars)
}

// Set sets the variable named by key on the platform and, once that
// succeeded, in the overlay. A refused variable leaves the overlay unchanged.
func (o *Overlay) Set(key, value string) error {
	o.Lock()
	defer o.Unlock()

	if err := o.env.Setenv(key, value); err != nil {
		return fmt.Errorf("(environ-set) %q: %w: %s: %w", key, ErrEnvSet, describe(err), err)
	}
	o.vars[key] = value

	return nil
}

// Delete removes the variable named by key from the platform and, once that
// succeeded, from the overlay. Deleting a variable the overlay does not hold
// returns [ErrNotSet], after it was removed from the platform regardless.
func (o *Overlay) Delete(key string) error {
	o.Lock()
	defer o.Unlock()

	if err := o.env.Unsetenv(key); err != nil {
		return fmt.Errorf("(environ-delete) %q: %w: %s: %w", key, ErrEnvUnset, describe(err), err)
	}

	if _, ok := o.vars[key]; !ok {
		return fmt.Errorf("(environ-delete) %q: %w", key, ErrNotSet)
	}
	delete(o.vars, key)

	return nil
}

// Import reads the given configuration files and sets every variable found,
// in order of their names. It stops at the first variable that is refused.
func (o *Overlay) Import(r Reader, filenames ...string) error {
	if len(filenames) == 0 {
		return nil
	}

	vars, err := r.Read(filenames...)
	if err != nil {
		return fmt.Errorf("(environ-import) %w", err)
	}

	for _, key := range slices.Sorted(maps.Keys(vars)) {
		if err := o.Set(key, vars[key]); err != nil {
			return fmt.Errorf("(environ-import) %w", err)
		}
	}

	slog.Debug("Imported environment files:",
		"files", filenames,
		"vars", len(vars),
	)

	return nil
}

// describe returns the bare platform description of an error, like strerror
// does for an errno.
func describe(err error) string {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno.Error()
	}

	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		return sysErr.Err.Error()
	}

	return err.Error()
}
