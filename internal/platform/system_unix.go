//go:build unix

package platform

import (
	"golang.org/x/sys/unix"
)

// Getwd wraps around [unix.Getwd].
func (*OSSystem) Getwd() (string, error) {
	dir, err := unix.Getwd()
	if err != nil {
		return "", systemError("getcwd", err)
	}

	return dir, nil
}

// Chdir wraps around [unix.Chdir].
func (*OSSystem) Chdir(dir string) error {
	if err := unix.Chdir(dir); err != nil {
		return systemError("chdir", err)
	}

	return nil
}

// Access wraps around [unix.Access]. It reports whether all checks of mode
// pass for the real user.
func (*OSSystem) Access(path string, mode AccessMode) bool {
	return unix.Access(path, uint32(mode)) == nil
}

// Uname wraps around [unix.Uname].
func (*OSSystem) Uname() (SystemInfo, error) {
	var buf unix.Utsname
	if err := unix.Uname(&buf); err != nil {
		return SystemInfo{}, systemError("uname", err)
	}

	return SystemInfo{
		Name:     Name(),
		Sysname:  unix.ByteSliceToString(buf.Sysname[:]),
		Nodename: unix.ByteSliceToString(buf.Nodename[:]),
		Release:  unix.ByteSliceToString(buf.Release[:]),
		Version:  unix.ByteSliceToString(buf.Version[:]),
		Machine:  unix.ByteSliceToString(buf.Machine[:]),
	}, nil
}
