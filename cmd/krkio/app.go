package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"runtime/pprof"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/krkio/internal/environ"
	"github.com/desertwitch/krkio/internal/fileio"
	"github.com/desertwitch/krkio/internal/platform"
)

// command is a subcommand of the application. It receives its own arguments,
// without the command name.
type command struct {
	usage string
	run   func(ctx context.Context, app *App, args []string) error
}

//nolint:gochecknoglobals
var commands = map[string]command{
	"cat":   {"cat [-b] FILE", runCat},
	"lines": {"lines FILE", runLines},
	"write": {"write [-a] [-b] FILE TEXT", runWrite},
	"ls":    {"ls [-p PATTERN] DIR", runList},
	"env":   {"env [-u KEY] [KEY | KEY=VALUE]", runEnv},
	"sum":   {"sum FILE", runSum},
	"view":  {"view FILE", runView},

	"cwd":      {"cwd", runCwd},
	"access":   {"access [-r] [-w] [-x] PATH", runAccess},
	"uname":    {"uname", runUname},
	"strerror": {"strerror ERRNO", runStrerror},
}

// App holds the state shared by all commands: the file handler through which
// every stream is opened, the process environment and the log handlers.
type App struct {
	files *fileio.Handler
	env   *environ.Overlay
	logs  *SlogManager
	sys   platform.System

	// interactive is set when a terminal is attached, otherwise the pager
	// falls back to plain output.
	interactive bool

	// pagerOpts are passed on to the pager's [tea.Program].
	pagerOpts []tea.ProgramOption
}

// NewApp returns a pointer to a new [App]. It is not interactive until the
// caller determined that a terminal is attached.
func NewApp(files *fileio.Handler, env *environ.Overlay, logs *SlogManager) *App {
	return &App{
		files: files,
		env:   env,
		logs:  logs,
		sys:   &platform.OSSystem{},
	}
}

// Run executes the command named by the first of args. The returned op is the
// command name, for reporting of any error.
func (app *App) Run(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "krkio", fmt.Errorf("(app) expected a command (%s): %w", strings.Join(commandNames(), ", "), ErrArguments)
	}

	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		return name, fmt.Errorf("(app) %q: %w", name, ErrUnknownCommand)
	}

	slog.Debug("Running command:", "command", name, "args", args[1:])

	// Samples of a CPU profile are attributed to the command.
	var err error
	pprof.Do(ctx, pprof.Labels("command", name), func(ctx context.Context) {
		err = cmd.run(ctx, app, args[1:])
	})
	if err != nil {
		return name, fmt.Errorf("(app-%s) %w", name, err)
	}

	if err := app.files.Stdout().Flush(); err != nil {
		return name, fmt.Errorf("(app-%s) %w", name, err)
	}

	return name, nil
}

// Usage writes the usage of all commands to w.
func Usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: krkio [flags] COMMAND [args]\n\nCommands:\n")
	for _, name := range commandNames() {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprintf(w, "\nFlags:\n")
	flag.PrintDefaults()
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// newFlagSet returns a [flag.FlagSet] for a command, which reports errors
// instead of exiting.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	return fs
}

// parseArgs parses args into fs and checks the amount of remaining arguments.
func parseArgs(fs *flag.FlagSet, args []string, want int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", fs.Name(), ErrArguments, err)
	}

	if fs.NArg() != want {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d: %w", fs.Name(), want, fs.NArg(), ErrArguments)
	}

	return fs.Args(), nil
}

// closeStream closes c and joins any error into err.
func closeStream(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil {
		*err = errors.Join(*err, cerr)
	}
}
