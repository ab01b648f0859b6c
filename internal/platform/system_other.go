//go:build !unix

package platform

import (
	"os"
	"runtime"
)

// Getwd wraps around [os.Getwd].
func (*OSSystem) Getwd() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", systemError("getcwd", err)
	}

	return dir, nil
}

// Chdir wraps around [os.Chdir].
func (*OSSystem) Chdir(dir string) error {
	if err := os.Chdir(dir); err != nil {
		return systemError("chdir", err)
	}

	return nil
}

// Access checks mode against the permission bits of the file, as platforms
// without access(2) have no notion of the real user.
func (*OSSystem) Access(path string, mode AccessMode) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	perm := AccessMode(info.Mode().Perm()>>6) & (AccessRead | AccessWrite | AccessExecute) //nolint:mnd

	return perm&mode == mode
}

// Uname describes the platform with what the runtime knows about it.
func (*OSSystem) Uname() (SystemInfo, error) {
	host, err := os.Hostname()
	if err != nil {
		return SystemInfo{}, systemError("uname", err)
	}

	return SystemInfo{
		Name:     Name(),
		Sysname:  runtime.GOOS,
		Nodename: host,
		Machine:  runtime.GOARCH,
	}, nil
}
