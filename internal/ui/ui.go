// Package ui implements a command-line pager for text files using [tea]. The
// lines are read from a [LineReader] in batches while the pager is running,
// so that large files become viewable before they were read completely.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// LineReader is a source of text lines, such as a text file stream. The
// boolean is false once no more lines are available.
type LineReader interface {
	ReadLine() (string, bool, error)
}

// Handler is the principal implementation of a user interface [Handler].
type Handler struct {
	program *tea.Program
	cancel  context.CancelFunc

	LogHandler *TeaLogHandler

	Ready  atomic.Bool
	Failed atomic.Bool
}

// NewHandler returns a pointer to a new user interface [Handler], paging the
// lines of src under the given title. The cancel function is called when the
// pager is interrupted, records at or above level are shown in its status
// line. Any given opts are passed on to the [tea.Program], after the defaults.
func NewHandler(ctx context.Context, cancel context.CancelFunc, title string, src LineReader, level slog.Leveler, opts ...tea.ProgramOption) *Handler {
	handler := &Handler{cancel: cancel}

	model := NewTeaModel(handler, title, src)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)

	handler.program = tea.NewProgram(model, opts...)
	handler.LogHandler = NewTeaLogHandler(handler.program, level)

	return handler
}

// Send sends a [tea.Msg] to the running [tea.Program].
func (uiHandler *Handler) Send(msg tea.Msg) {
	uiHandler.program.Send(msg)
}

// Launch starts the command-line user interface (the [tea.Program]) and
// blocks until it is quit. It returns [ErrInterrupted] when the pager was
// quit with Ctrl+C or killed by its context, and otherwise any error that
// occurred while reading the lines.
func (uiHandler *Handler) Launch() error {
	defer uiHandler.LogHandler.Stop()

	final, err := uiHandler.program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			uiHandler.cancel()

			return fmt.Errorf("(ui) %w: %w", ErrInterrupted, err)
		}
		uiHandler.Failed.Store(true)

		return fmt.Errorf("(ui) %w", err)
	}

	m, ok := final.(TeaModel)
	if !ok {
		return nil
	}

	if m.interrupted {
		uiHandler.cancel()

		return fmt.Errorf("(ui) %w", ErrInterrupted)
	}

	if m.err != nil {
		return fmt.Errorf("(ui) %w", m.err)
	}

	return nil
}
