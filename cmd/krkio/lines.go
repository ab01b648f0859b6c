package main

import (
	"context"
	"fmt"
	"strings"
)

func runLines(_ context.Context, app *App, args []string) (err error) {
	rest, err := parseArgs(newFlagSet("lines"), args, 1)
	if err != nil {
		return err
	}

	f, err := app.files.OpenText(rest[0], "r")
	if err != nil {
		return fmt.Errorf("(lines) %w", err)
	}
	defer closeStream(f, &err)

	lines, err := f.ReadLines()
	if err != nil {
		return fmt.Errorf("(lines) %w", err)
	}

	out := app.files.Stdout()
	for i, line := range lines {
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		if _, err := out.Write(fmt.Sprintf("%6d  %s", i+1, line)); err != nil {
			return fmt.Errorf("(lines) %w", err)
		}
	}

	return nil
}
