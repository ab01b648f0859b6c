package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertwitch/krkio/internal/environ"
)

func runEnv(_ context.Context, app *App, args []string) error {
	fs := newFlagSet("env")
	unset := fs.String("u", "", "remove the variable of the given name")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("env: %w: %w", ErrArguments, err)
	}

	out := app.files.Stdout()

	switch {
	case *unset != "":
		if fs.NArg() != 0 {
			return fmt.Errorf("env: -u takes no further arguments: %w", ErrArguments)
		}
		if err := app.env.Delete(*unset); err != nil {
			return fmt.Errorf("(env) %w", err)
		}

	case fs.NArg() == 0:
		var s strings.Builder
		for key, value := range app.env.All() {
			s.WriteString(key + "=" + value + "\n")
		}
		if _, err := out.Write(s.String()); err != nil {
			return fmt.Errorf("(env) %w", err)
		}

	case fs.NArg() == 1:
		key, value, assign := strings.Cut(fs.Arg(0), "=")
		if assign {
			if err := app.env.Set(key, value); err != nil {
				return fmt.Errorf("(env) %w", err)
			}

			return nil
		}

		value, ok := app.env.Lookup(key)
		if !ok {
			return fmt.Errorf("(env) %q: %w", key, environ.ErrNotSet)
		}
		if _, err := out.Write(value + "\n"); err != nil {
			return fmt.Errorf("(env) %w", err)
		}

	default:
		return fmt.Errorf("env: expected at most 1 argument, got %d: %w", fs.NArg(), ErrArguments)
	}

	return nil
}
