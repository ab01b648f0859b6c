//go:build unix

package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOSSystem_Chdir_Success verifies that changing the working directory is
// reflected by Getwd. It must not run in parallel, as the working directory
// is process-wide.
func TestOSSystem_Chdir_Success(t *testing.T) {
	t.Chdir(t.TempDir())

	sys := &OSSystem{}

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, sys.Chdir(dir))

	wd, err := sys.Getwd()
	require.NoError(t, err)
	assert.Equal(t, dir, wd)
}

// TestOSSystem_Chdir_Fail verifies that changing into a missing directory is
// an operating system error carrying the errno.
func TestOSSystem_Chdir_Fail(t *testing.T) {
	t.Parallel()

	sys := &OSSystem{}

	err := sys.Chdir(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, ErrSystem)
	require.ErrorIs(t, err, syscall.ENOENT)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "chdir")
}

// TestOSSystem_Getpid verifies that the process identifier is the one of the
// running process.
func TestOSSystem_Getpid(t *testing.T) {
	t.Parallel()

	assert.Equal(t, os.Getpid(), (&OSSystem{}).Getpid())
}

// TestOSSystem_Access_Table verifies the access checks against files with
// different permissions.
func TestOSSystem_Access_Table(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("permission checks always pass for the superuser")
	}

	dir := t.TempDir()

	readOnly := filepath.Join(dir, "read-only")
	require.NoError(t, os.WriteFile(readOnly, []byte("x"), 0o400))

	executable := filepath.Join(dir, "executable")
	require.NoError(t, os.WriteFile(executable, []byte("#!/bin/sh\n"), 0o700))

	missing := filepath.Join(dir, "missing")

	testCases := []struct {
		name     string
		path     string
		mode     AccessMode
		expected bool
	}{
		{"Success_Exists", readOnly, AccessExists, true},
		{"Success_Read", readOnly, AccessRead, true},
		{"Success_ReadWriteExecute", executable, AccessRead | AccessWrite | AccessExecute, true},
		{"Success_Directory", dir, AccessRead | AccessExecute, true},
		{"Fail_Write", readOnly, AccessWrite, false},
		{"Fail_Execute", readOnly, AccessExecute, false},
		{"Fail_Missing", missing, AccessExists, false},
	}

	sys := &OSSystem{}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, sys.Access(tc.path, tc.mode))
		})
	}
}

// TestOSSystem_Uname verifies that the system information is filled in.
func TestOSSystem_Uname(t *testing.T) {
	t.Parallel()

	info, err := (&OSSystem{}).Uname()
	require.NoError(t, err)

	assert.Equal(t, "posix", info.Name)
	if runtime.GOOS == "linux" {
		assert.Equal(t, "Linux", info.Sysname)
	}
	assert.NotEmpty(t, info.Release)
	assert.NotEmpty(t, info.Machine)
	assert.NotContains(t, info.Sysname, "\x00")

	host, err := os.Hostname()
	require.NoError(t, err)
	assert.Equal(t, host, info.Nodename)
}
