package platform

import (
	"fmt"
	"os"
	"runtime"
)

// AccessMode is a set of checks for [System.Access], with the values of the
// access(2) mask.
type AccessMode uint32

// The checks of an [AccessMode]. AccessExists alone only checks that the path
// exists.
const (
	AccessExists  AccessMode = 0
	AccessExecute AccessMode = 1
	AccessWrite   AccessMode = 2
	AccessRead    AccessMode = 4
)

// SystemInfo describes the running operating system, as uname(2) does. Name
// is "nt" on Windows and "posix" everywhere else.
type SystemInfo struct {
	Name     string
	Sysname  string
	Nodename string
	Release  string
	Version  string
	Machine  string
}

// System is the process-wide state of the operating system: the working
// directory, the process identity and the host.
type System interface {
	Getwd() (string, error)
	Chdir(dir string) error
	Getpid() int
	Access(path string, mode AccessMode) bool
	Uname() (SystemInfo, error)
}

// OSSystem is an implementation of [System] for the running process.
type OSSystem struct{}

// Getpid wraps around [os.Getpid].
func (*OSSystem) Getpid() int {
	return os.Getpid()
}

// Name returns the name of the operating system family.
func Name() string {
	if runtime.GOOS == "windows" {
		return "nt"
	}

	return "posix"
}

func systemError(op string, err error) error {
	return fmt.Errorf("(platform-%s) %w: %w", op, ErrSystem, os.NewSyscallError(op, unwrapPathError(err)))
}
