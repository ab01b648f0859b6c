package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/krkio/internal/hosterr"
	"github.com/desertwitch/krkio/internal/platform"
)

//nolint:gochecknoglobals
var keyStyle = lipgloss.NewStyle().
	Bold(true).
	Width(10) //nolint:mnd

func runCwd(_ context.Context, app *App, args []string) error {
	if _, err := parseArgs(newFlagSet("cwd"), args, 0); err != nil {
		return err
	}

	dir, err := app.sys.Getwd()
	if err != nil {
		return fmt.Errorf("(cwd) %w", err)
	}

	if _, err := app.files.Stdout().Write(dir + "\n"); err != nil {
		return fmt.Errorf("(cwd) %w", err)
	}

	return nil
}

// runAccess prints whether all requested checks pass for the path. Without
// any flags only the existence of the path is checked.
func runAccess(_ context.Context, app *App, args []string) error {
	fs := newFlagSet("access")
	read := fs.Bool("r", false, "check for read permission")
	write := fs.Bool("w", false, "check for write permission")
	execute := fs.Bool("x", false, "check for execute permission")

	rest, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}

	mode := platform.AccessExists
	if *read {
		mode |= platform.AccessRead
	}
	if *write {
		mode |= platform.AccessWrite
	}
	if *execute {
		mode |= platform.AccessExecute
	}

	ok := app.sys.Access(rest[0], mode)
	if _, err := app.files.Stdout().Write(strconv.FormatBool(ok) + "\n"); err != nil {
		return fmt.Errorf("(access) %w", err)
	}

	return nil
}

func runUname(_ context.Context, app *App, args []string) error {
	if _, err := parseArgs(newFlagSet("uname"), args, 0); err != nil {
		return err
	}

	info, err := app.sys.Uname()
	if err != nil {
		return fmt.Errorf("(uname) %w", err)
	}

	var s strings.Builder
	for _, field := range [][2]string{
		{"name", info.Name},
		{"sysname", info.Sysname},
		{"nodename", info.Nodename},
		{"release", info.Release},
		{"version", info.Version},
		{"machine", info.Machine},
		{"pid", strconv.Itoa(app.sys.Getpid())},
	} {
		s.WriteString(keyStyle.Render(field[0]) + field[1] + "\n")
	}

	if _, err := app.files.Stdout().Write(s.String()); err != nil {
		return fmt.Errorf("(uname) %w", err)
	}

	return nil
}

func runStrerror(_ context.Context, app *App, args []string) error {
	rest, err := parseArgs(newFlagSet("strerror"), args, 1)
	if err != nil {
		return err
	}

	code, err := strconv.Atoi(rest[0])
	if err != nil {
		return fmt.Errorf("strerror: %w: %w", ErrArguments, err)
	}

	if _, err := app.files.Stdout().Write(hosterr.Strerror(code) + "\n"); err != nil {
		return fmt.Errorf("(strerror) %w", err)
	}

	return nil
}
