package platform

import (
	"os"
)

// OSEnv is an implementation of [Environment] wrapping the environment table
// of the running process.
type OSEnv struct{}

// Environ wraps around [os.Environ].
func (*OSEnv) Environ() []string {
	return os.Environ()
}
