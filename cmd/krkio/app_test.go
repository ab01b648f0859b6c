package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/krkio/internal/environ"
	"github.com/desertwitch/krkio/internal/fileio"
	"github.com/desertwitch/krkio/internal/hosterr"
	"github.com/desertwitch/krkio/internal/platform"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

// newTestApp returns an [App] on the given file system and environment,
// writing its standard output into the returned buffer.
func newTestApp(t *testing.T, fsys platform.FileSystem, env platform.Environment) (*App, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	files := fileio.NewHandler(fsys, fileio.WithStdio(strings.NewReader(""), &out, io.Discard))
	t.Cleanup(func() { assert.NoError(t, files.Shutdown()) })

	return NewApp(files, environ.Load(env), NewSlogManager()), &out
}

// TestRun_WriteCat verifies writing, appending and reading back a text file.
func TestRun_WriteCat(t *testing.T) {
	t.Parallel()

	app, out := newTestApp(t, &platform.OS{}, platform.NewMapEnv())
	name := filepath.Join(t.TempDir(), "note.txt")

	_, err := app.Run(t.Context(), []string{"write", name, "hello\n"})
	require.NoError(t, err)

	_, err = app.Run(t.Context(), []string{"write", "-a", name, "world\n"})
	require.NoError(t, err)

	_, err = app.Run(t.Context(), []string{"cat", name})
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", out.String())

	out.Reset()
	_, err = app.Run(t.Context(), []string{"lines", name})
	require.NoError(t, err)
	assert.Equal(t, "     1  hello\n     2  world\n", out.String())
}

// TestRun_Binary verifies writing and reading back raw bytes, and their
// checksum.
func TestRun_Binary(t *testing.T) {
	t.Parallel()

	app, out := newTestApp(t, &platform.OS{}, platform.NewMapEnv())
	name := filepath.Join(t.TempDir(), "blob.bin")

	_, err := app.Run(t.Context(), []string{"write", "-b", name, "payload\x00bytes"})
	require.NoError(t, err)

	_, err = app.Run(t.Context(), []string{"cat", "-b", name})
	require.NoError(t, err)
	assert.Equal(t, "payload\x00bytes", out.String())

	out.Reset()
	_, err = app.Run(t.Context(), []string{"sum", name})
	require.NoError(t, err)

	digest := blake3.Sum256([]byte("payload\x00bytes"))
	assert.Equal(t, fmt.Sprintf("%x  %s (13 B)\n", digest, name), out.String())
}

// TestRun_List verifies listing a directory of a confined file system.
func TestRun_List(t *testing.T) {
	t.Parallel()

	fsys := platform.NewChroot(t.TempDir())
	require.NoError(t, util.WriteFile(fsys.Unwrap(), "dir/a.txt", []byte("a"), 0o600))
	require.NoError(t, util.WriteFile(fsys.Unwrap(), "dir/b.txt", []byte("b"), 0o600))

	app, out := newTestApp(t, fsys, platform.NewMapEnv())

	_, err := app.Run(t.Context(), []string{"ls", "dir"})
	require.NoError(t, err)

	listing := out.String()
	assert.Contains(t, listing, "a.txt")
	assert.Contains(t, listing, "b.txt")
	assert.Contains(t, listing, "..")
	assert.Contains(t, listing, "4 entries in dir")

	out.Reset()
	_, err = app.Run(t.Context(), []string{"ls", "-p", "a.*", "dir"})
	require.NoError(t, err)

	listing = out.String()
	assert.Contains(t, listing, "a.txt")
	assert.NotContains(t, listing, "b.txt")
	assert.Contains(t, listing, "1 entries in dir")
}

// TestRun_View_NotInteractive verifies that the pager falls back to plain
// output without a terminal.
func TestRun_View_NotInteractive(t *testing.T) {
	t.Parallel()

	app, out := newTestApp(t, &platform.OS{}, platform.NewMapEnv())
	name := filepath.Join(t.TempDir(), "view.txt")
	require.NoError(t, os.WriteFile(name, []byte("first\nsecond\n"), 0o600))

	_, err := app.Run(t.Context(), []string{"view", name})
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", out.String())
}

// TestRun_View_Interactive_Table verifies that the pager quits cleanly on
// both a regular quit and Ctrl+C, and releases the paged file.
func TestRun_View_Interactive_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
	}{
		{"Success_Quit", "q"},
		{"Success_CtrlC", "\x03"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			app, out := newTestApp(t, &platform.OS{}, platform.NewMapEnv())
			name := filepath.Join(t.TempDir(), "view.txt")
			require.NoError(t, os.WriteFile(name, []byte("first\nsecond\n"), 0o600))

			var screen bytes.Buffer
			app.interactive = true
			app.pagerOpts = []tea.ProgramOption{
				tea.WithInput(strings.NewReader(tc.input)),
				tea.WithOutput(&screen),
				tea.WithoutSignalHandler(),
			}

			live := app.files.Tracker().Live()

			ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
			defer cancel()

			_, err := app.Run(ctx, []string{"view", name})
			require.NoError(t, err)
			require.NoError(t, ctx.Err(), "pager did not quit before the timeout")

			assert.Empty(t, out.String(), "pager wrote to the standard output stream")
			assert.NotZero(t, screen.Len(), "pager generated no output at all")
			assert.Equal(t, live, app.files.Tracker().Live(), "paged file was not released")
		})
	}
}

// TestRun_View_Interactive_Cancelled verifies that the pager quits cleanly
// when the context is cancelled, as on SIGTERM.
func TestRun_View_Interactive_Cancelled(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, &platform.OS{}, platform.NewMapEnv())
	name := filepath.Join(t.TempDir(), "view.txt")
	require.NoError(t, os.WriteFile(name, []byte("first\n"), 0o600))

	// The pipe is never written to, so the pager waits for input.
	pr, pw := io.Pipe()
	defer pw.Close()

	app.interactive = true
	app.pagerOpts = []tea.ProgramOption{
		tea.WithInput(pr),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
	}

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(200*time.Millisecond, cancel)

	_, err := app.Run(ctx, []string{"view", name})
	require.NoError(t, err)
}

// TestRun_Env verifies setting, reading and removing variables.
func TestRun_Env(t *testing.T) {
	t.Parallel()

	env := platform.NewMapEnv("HOME=/root")
	app, out := newTestApp(t, &platform.OS{}, env)

	_, err := app.Run(t.Context(), []string{"env", "KEY=VALUE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"HOME=/root", "KEY=VALUE"}, env.Environ())

	_, err = app.Run(t.Context(), []string{"env", "KEY"})
	require.NoError(t, err)
	assert.Equal(t, "VALUE\n", out.String())

	out.Reset()
	_, err = app.Run(t.Context(), []string{"env"})
	require.NoError(t, err)
	assert.Equal(t, "HOME=/root\nKEY=VALUE\n", out.String())

	_, err = app.Run(t.Context(), []string{"env", "-u", "KEY"})
	require.NoError(t, err)
	assert.Equal(t, []string{"HOME=/root"}, env.Environ())

	_, err = app.Run(t.Context(), []string{"env", "KEY"})
	require.ErrorIs(t, err, environ.ErrNotSet)
}

// TestRun_System verifies the commands querying the process state.
func TestRun_System(t *testing.T) {
	t.Parallel()

	app, out := newTestApp(t, &platform.OS{}, platform.NewMapEnv())
	sys := newMockSystem(t)
	app.sys = sys

	sys.On("Getwd").Return("/srv/data", nil).Once()
	_, err := app.Run(t.Context(), []string{"cwd"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/data\n", out.String())

	out.Reset()
	sys.On("Access", "/srv/data/run.sh", platform.AccessRead|platform.AccessExecute).Return(true).Once()
	_, err = app.Run(t.Context(), []string{"access", "-r", "-x", "/srv/data/run.sh"})
	require.NoError(t, err)
	assert.Equal(t, "true\n", out.String())

	out.Reset()
	sys.On("Access", "/srv/missing", platform.AccessExists).Return(false).Once()
	_, err = app.Run(t.Context(), []string{"access", "/srv/missing"})
	require.NoError(t, err)
	assert.Equal(t, "false\n", out.String())

	out.Reset()
	sys.On("Uname").Return(platform.SystemInfo{
		Name:     "posix",
		Sysname:  "Linux",
		Nodename: "tower",
		Release:  "6.12.24-Unraid",
		Version:  "#1 SMP PREEMPT_DYNAMIC",
		Machine:  "x86_64",
	}, nil).Once()
	sys.On("Getpid").Return(4242).Once()
	_, err = app.Run(t.Context(), []string{"uname"})
	require.NoError(t, err)

	for _, want := range []string{"posix", "Linux", "tower", "6.12.24-Unraid", "#1 SMP PREEMPT_DYNAMIC", "x86_64", "4242"} {
		assert.Contains(t, out.String(), want)
	}
	assert.Equal(t, 7, strings.Count(out.String(), "\n"))

	out.Reset()
	_, err = app.Run(t.Context(), []string{"strerror", "2"})
	require.NoError(t, err)
	assert.Equal(t, "no such file or directory\n", out.String())
}

// TestRun_System_Fail verifies that a failure of the operating system is
// reported as such.
func TestRun_System_Fail(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, &platform.OS{}, platform.NewMapEnv())
	sys := newMockSystem(t)
	app.sys = sys

	sysErr := fmt.Errorf("%w: %w", platform.ErrSystem, os.NewSyscallError("getcwd", syscall.ENOENT))
	sys.On("Getwd").Return("", sysErr).Once()

	op, err := app.Run(t.Context(), []string{"cwd"})
	require.ErrorIs(t, err, platform.ErrSystem)

	herr := hosterr.Convert(op, err)
	assert.Equal(t, string(hosterr.KindOS), herr.Context()[hosterr.ContextKind])
	assert.Equal(t, 1, hosterr.ExitCode(herr))
}

// TestRun_Fail_Table verifies the failures of commands and their exit codes.
func TestRun_Fail_Table(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.txt")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o600))

	testCases := []struct {
		name     string
		args     []string
		op       string
		expected error
		exitCode int
	}{
		{"Fail_NoCommand", nil, "krkio", fileio.ErrUsage, 2},
		{"Fail_UnknownCommand", []string{"frobnicate"}, "frobnicate", ErrUnknownCommand, 2},
		{"Fail_MissingArgument", []string{"cat"}, "cat", ErrArguments, 2},
		{"Fail_UnknownFlag", []string{"cat", "-z", existing}, "cat", ErrArguments, 2},
		{"Fail_NotExist", []string{"cat", filepath.Join(dir, "missing")}, "cat", os.ErrNotExist, 1},
		{"Fail_NotDirectory", []string{"ls", existing}, "ls", fileio.ErrIO, 1},
		{"Fail_Pattern", []string{"ls", "-p", "[", dir}, "ls", ErrArguments, 2},
		{"Fail_EnvKey", []string{"env", "=VALUE"}, "env", environ.ErrEnvSet, 1},
		{"Fail_CwdArgument", []string{"cwd", dir}, "cwd", ErrArguments, 2},
		{"Fail_AccessNoPath", []string{"access", "-r"}, "access", ErrArguments, 2},
		{"Fail_StrerrorNotNumber", []string{"strerror", "ENOENT"}, "strerror", ErrArguments, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			app, _ := newTestApp(t, &platform.OS{}, platform.NewMapEnv())

			op, err := app.Run(t.Context(), tc.args)
			require.ErrorIs(t, err, tc.expected)
			assert.Equal(t, tc.op, op)
			assert.Equal(t, tc.exitCode, hosterr.ExitCode(hosterr.Convert(op, err)))
		})
	}
}

// TestUsage verifies that the usage lists all commands.
func TestUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Usage(&buf)

	for _, name := range commandNames() {
		assert.Contains(t, buf.String(), commands[name].usage)
	}
}
