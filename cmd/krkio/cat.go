package main

import (
	"context"
	"fmt"
)

func runCat(_ context.Context, app *App, args []string) error {
	fs := newFlagSet("cat")
	binary := fs.Bool("b", false, "read the file as raw bytes")

	rest, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}

	read := readText
	if *binary {
		read = readBinary
	}

	content, err := read(app, rest[0])
	if err != nil {
		return fmt.Errorf("(cat) %w", err)
	}

	if _, err := app.files.Stdout().Write(content); err != nil {
		return fmt.Errorf("(cat) %w", err)
	}

	return nil
}

func readText(app *App, path string) (content string, err error) {
	f, err := app.files.OpenText(path, "r")
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	defer closeStream(f, &err)

	content, _, err = f.ReadAll()

	return content, err //nolint:wrapcheck
}

func readBinary(app *App, path string) (content string, err error) {
	f, err := app.files.OpenBinary(path, "rb")
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	defer closeStream(f, &err)

	data, _, err := f.ReadAll()

	return string(data), err //nolint:wrapcheck
}
