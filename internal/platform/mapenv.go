package platform

import (
	"os"
	"slices"
	"strings"
	"sync"
	"syscall"
)

// MapEnv is an in-memory implementation of [Environment]. It applies the same
// key validation as setenv, so it can stand in for the process environment
// wherever the real one must not be touched.
type MapEnv struct {
	sync.Mutex
	vars map[string]string
}

// NewMapEnv returns a pointer to a new [MapEnv] holding the given "KEY=VALUE"
// pairs. Pairs without a "=" are skipped.
func NewMapEnv(environ ...string) *MapEnv {
	m := &MapEnv{
		vars: make(map[string]string, len(environ)),
	}

	for _, kv := range environ {
		if key, value, ok := strings.Cut(kv, "="); ok && key != "" {
			m.vars[key] = value
		}
	}

	return m
}

// Environ returns a sorted copy of the environment as "KEY=VALUE" pairs.
func (m *MapEnv) Environ() []string {
	m.Lock()
	defer m.Unlock()

	environ := make([]string, 0, len(m.vars))
	for key, value := range m.vars {
		environ = append(environ, key+"="+value)
	}
	slices.Sort(environ)

	return environ
}

// Setenv sets the value of the variable named by key.
func (m *MapEnv) Setenv(key, value string) error {
	if !validEnvKey(key) || strings.IndexByte(value, 0) >= 0 {
		return os.NewSyscallError("setenv", syscall.EINVAL)
	}

	m.Lock()
	defer m.Unlock()

	m.vars[key] = value

	return nil
}

// Unsetenv removes the variable named by key. Removing a variable that is not
// set is not an error.
func (m *MapEnv) Unsetenv(key string) error {
	if !validEnvKey(key) {
		return os.NewSyscallError("unsetenv", syscall.EINVAL)
	}

	m.Lock()
	defer m.Unlock()

	delete(m.vars, key)

	return nil
}

func validEnvKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, "=\x00")
}
