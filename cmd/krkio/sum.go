package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
)

func runSum(_ context.Context, app *App, args []string) (err error) {
	rest, err := parseArgs(newFlagSet("sum"), args, 1)
	if err != nil {
		return err
	}

	f, err := app.files.OpenBinary(rest[0], "rb")
	if err != nil {
		return fmt.Errorf("(sum) %w", err)
	}
	defer closeStream(f, &err)

	data, _, err := f.ReadAll()
	if err != nil {
		return fmt.Errorf("(sum) %w", err)
	}

	digest := blake3.Sum256(data)
	line := fmt.Sprintf("%x  %s (%s)\n", digest, rest[0], humanize.IBytes(uint64(len(data))))

	if _, err := app.files.Stdout().Write(line); err != nil {
		return fmt.Errorf("(sum) %w", err)
	}

	return nil
}
