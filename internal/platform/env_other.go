//go:build !unix

package platform

import (
	"os"
)

// Setenv wraps around [os.Setenv].
func (*OSEnv) Setenv(key, value string) error {
	return os.Setenv(key, value) //nolint:wrapcheck
}

// Unsetenv sets the variable to an empty value, as platforms without unsetenv
// remove a variable by assigning "KEY=".
func (*OSEnv) Unsetenv(key string) error {
	return os.Setenv(key, "") //nolint:wrapcheck
}
