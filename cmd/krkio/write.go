package main

import (
	"context"
	"fmt"
	"log/slog"
)

func runWrite(_ context.Context, app *App, args []string) (err error) {
	fs := newFlagSet("write")
	appendMode := fs.Bool("a", false, "append to the file instead of truncating it")
	binary := fs.Bool("b", false, "write the text as raw bytes")

	rest, err := parseArgs(fs, args, 2) //nolint:mnd
	if err != nil {
		return err
	}

	mode := "w"
	if *appendMode {
		mode = "a"
	}

	var payload any = rest[1]
	if *binary {
		mode += "b"
		payload = []byte(rest[1])
	}

	f, err := app.files.Open(rest[0], mode)
	if err != nil {
		return fmt.Errorf("(write) %w", err)
	}
	defer closeStream(f, &err)

	n, err := f.WriteValue(payload)
	if err != nil {
		return fmt.Errorf("(write) %w", err)
	}

	if err := f.Flush(); err != nil {
		return fmt.Errorf("(write) %w", err)
	}

	slog.Debug("Wrote file:",
		"path", f.Path(),
		"mode", f.Mode(),
		"bytes", n,
	)

	return nil
}
