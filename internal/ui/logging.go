package ui

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// logQueueSize is the amount of records buffered before [TeaLogHandler.Handle]
// blocks on a busy [tea.Program].
const logQueueSize = 1000

// LogMsg is a log record forwarded to the pager's status line. Path is set
// when the record (or its handler) carried a "path" or "name" attribute, as
// logged when files and directories are opened and released.
type LogMsg struct {
	Level   slog.Level
	Message string
	Path    string
}

// String returns the status line representation of the [LogMsg].
func (msg LogMsg) String() string {
	var sb strings.Builder

	sb.WriteString(msg.Level.String())
	sb.WriteByte(' ')
	sb.WriteString(strings.TrimSuffix(strings.TrimSpace(msg.Message), ":"))

	if msg.Path != "" {
		sb.WriteString(" ")
		sb.WriteString(msg.Path)
	}

	return sb.String()
}

type teaProgramProvider interface {
	Send(msg tea.Msg)
}

// logQueue is the state shared between a [TeaLogHandler] and all handlers
// derived from it with [TeaLogHandler.WithAttrs] or [TeaLogHandler.WithGroup].
type logQueue struct {
	program  teaProgramProvider
	doneChan chan struct{}
	logChan  chan LogMsg
	stopOnce sync.Once
}

// TeaLogHandler is a [slog.Handler] that sends log records to a [tea.Program]
// as [LogMsg], so that they can be shown while the program owns the terminal.
type TeaLogHandler struct {
	queue *logQueue
	level slog.Leveler
	path  string
}

// NewTeaLogHandler returns a pointer to a new [TeaLogHandler] for records at
// or above level (all levels if nil). It also starts the internal log
// processing function, which should eventually be stopped e.g. with a
// deferred [TeaLogHandler.Stop] call.
func NewTeaLogHandler(program teaProgramProvider, level slog.Leveler) *TeaLogHandler {
	if level == nil {
		level = slog.LevelDebug
	}

	q := &logQueue{
		program:  program,
		doneChan: make(chan struct{}),
		logChan:  make(chan LogMsg, logQueueSize),
	}

	go q.process()

	return &TeaLogHandler{queue: q, level: level}
}

// Stop stops any log message processing. Any in-flight or late records are
// discarded after calling this method. It is safe to call more than once.
func (h *TeaLogHandler) Stop() {
	h.queue.stopOnce.Do(func() {
		close(h.queue.doneChan)
	})
}

func (q *logQueue) process() {
	for {
		select {
		case <-q.doneChan:
			return
		case msg := <-q.logChan:
			q.program.Send(msg)
		}
	}
}

// Enabled reports whether records of the given level are sent.
func (h *TeaLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle queues the record for the [tea.Program].
func (h *TeaLogHandler) Handle(_ context.Context, r slog.Record) error {
	msg := LogMsg{
		Level:   r.Level,
		Message: r.Message,
		Path:    h.path,
	}

	r.Attrs(func(a slog.Attr) bool {
		if p, ok := pathOf(a); ok {
			msg.Path = p

			return false
		}

		return true
	})

	select {
	case <-h.queue.doneChan:
	case h.queue.logChan <- msg:
	}

	return nil
}

// WithAttrs returns a [TeaLogHandler] remembering any path attribute.
//
//nolint:ireturn
func (h *TeaLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := *h
	for _, a := range attrs {
		if p, ok := pathOf(a); ok {
			child.path = p
		}
	}

	return &child
}

// WithGroup returns the handler unchanged, groups are not shown.
//
//nolint:ireturn
func (h *TeaLogHandler) WithGroup(_ string) slog.Handler {
	return h
}

func pathOf(a slog.Attr) (string, bool) {
	if a.Key != "path" && a.Key != "name" {
		return "", false
	}

	return a.Value.Resolve().String(), true
}
