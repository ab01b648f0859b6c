package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"
)

//nolint:gochecknoglobals
var (
	inodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Width(12). //nolint:mnd
			Align(lipgloss.Right).
			PaddingRight(2) //nolint:mnd

	dotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	footerStyle = lipgloss.NewStyle().
			Italic(true)
)

func runList(ctx context.Context, app *App, args []string) (err error) {
	fs := newFlagSet("ls")
	pattern := fs.String("p", "", "list only entries matching this glob pattern")

	rest, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}

	var filter glob.Glob
	if *pattern != "" {
		if filter, err = glob.Compile(*pattern); err != nil {
			return fmt.Errorf("ls: pattern %q: %w: %w", *pattern, ErrArguments, err)
		}
	}

	d, err := app.files.OpenDir(rest[0])
	if err != nil {
		return fmt.Errorf("(ls) %w", err)
	}
	defer closeStream(d, &err)

	var s strings.Builder
	var count int64

	for entry, err := range d.Entries() {
		if err != nil {
			return fmt.Errorf("(ls) %w", err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("(ls) %w", ctx.Err())
		}

		if filter != nil && !filter.Match(entry.Name) {
			continue
		}

		name := entry.Name
		if name == "." || name == ".." {
			name = dotStyle.Render(name)
		}

		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			inodeStyle.Render(strconv.FormatUint(entry.Inode, 10)),
			name,
		))
		s.WriteString("\n")
		count++
	}

	s.WriteString(footerStyle.Render(humanize.Comma(count) + " entries in " + d.Path()))
	s.WriteString("\n")

	if _, err := app.files.Stdout().Write(s.String()); err != nil {
		return fmt.Errorf("(ls) %w", err)
	}

	return nil
}
