package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertwitch/krkio/internal/ui"
)

func runView(ctx context.Context, app *App, args []string) (err error) {
	if !app.interactive {
		return runCat(ctx, app, args)
	}

	rest, err := parseArgs(newFlagSet("view"), args, 1)
	if err != nil {
		return err
	}

	f, err := app.files.OpenText(rest[0], "r")
	if err != nil {
		return fmt.Errorf("(view) %w", err)
	}
	defer closeStream(f, &err)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	uiHandler := ui.NewHandler(ctx, cancel, f.Path(), f, logLevel, app.pagerOpts...)

	// The pager owns the terminal, so logs are shown in its status line.
	if terminal, ok := app.logs.RemoveHandler(terminalHandler); ok {
		defer app.logs.AddHandler(terminalHandler, terminal)
	}
	app.logs.AddHandler(uiLogHandler, uiHandler.LogHandler)
	defer app.logs.RemoveHandler(uiLogHandler)

	if err := uiHandler.Launch(); err != nil {
		if errors.Is(err, ui.ErrInterrupted) {
			return nil
		}
		if uiHandler.Failed.Load() {
			return fmt.Errorf("(view) %w: %w", ErrPagerFailed, err)
		}

		return fmt.Errorf("(view) %w", err)
	}

	return nil
}
