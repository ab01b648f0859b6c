//go:build unix

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// Setenv wraps around [unix.Setenv].
func (*OSEnv) Setenv(key, value string) error {
	if err := unix.Setenv(key, value); err != nil {
		return os.NewSyscallError("setenv", err)
	}

	return nil
}

// Unsetenv wraps around [unix.Unsetenv].
func (*OSEnv) Unsetenv(key string) error {
	if err := unix.Unsetenv(key); err != nil {
		return os.NewSyscallError("unsetenv", err)
	}

	return nil
}
