package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// batchSize is the amount of lines read per [LinesMsg].
const batchSize = 500

//nolint:gochecknoglobals
var (
	// titleStyle defines the style for the pager's title.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	// borderStyle defines the style for the pager's borders.
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	// infoStyle defines the style for the status line.
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	// helpStyle defines the style for the help line.
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

// LinesMsg is a [tea.Msg] containing a batch of lines read from the
// [LineReader]. Done is set once the reader has no more lines.
type LinesMsg struct {
	Lines []string
	Done  bool
	Err   error
}

// TeaModel is the principal [tea.Model] for the command-line user interface.
type TeaModel struct {
	width  int
	height int

	uiHandler *Handler
	title     string
	src       LineReader

	contentWidth int

	viewport viewport.Model
	lines    []string
	size     uint64
	done     bool
	err      error
	status   string

	ready       bool
	interrupted bool
}

// NewTeaModel returns an initial new [TeaModel].
//
//nolint:mnd
func NewTeaModel(uiHandler *Handler, title string, src LineReader) TeaModel {
	return TeaModel{
		uiHandler: uiHandler,
		title:     title,
		src:       src,
		viewport:  viewport.New(80, 20),
		lines:     make([]string, 0, batchSize),
	}
}

// Init initializes the model within a [tea.Program].
func (m TeaModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		readLines(m.src),
	)
}

// readLines produces a [tea.Cmd] that reads the next batch of lines from src
// and returns them as a [LinesMsg].
func readLines(src LineReader) tea.Cmd {
	return func() tea.Msg {
		msg := LinesMsg{Lines: make([]string, 0, batchSize)}

		for range batchSize {
			line, ok, err := src.ReadLine()
			if err != nil {
				msg.Err = err
				msg.Done = true

				return msg
			}
			if !ok {
				msg.Done = true

				return msg
			}
			msg.Lines = append(msg.Lines, line)
		}

		return msg
	}
}

// Update is the principal message handling method of the model.
// It sets the internal state of the model, for later rendering.
//
//nolint:mnd,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			// The handler cancels the context once the program has returned.
			m.interrupted = true

			return m, tea.Quit
		case "q", "esc":
			return m, tea.Quit
		case "g", "home":
			m.viewport.GotoTop()
		case "G", "end":
			m.viewport.GotoBottom()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.contentWidth = m.width - 2

		// Title, borders, status and help take five lines.
		m.viewport.Width = m.contentWidth
		m.viewport.Height = max(m.height-5, 1)
		m.setContent()

		if !m.ready {
			m.ready = true
			if m.uiHandler != nil {
				m.uiHandler.Ready.Store(true)
			}
		}

	case LinesMsg:
		m.lines = append(m.lines, msg.Lines...)
		for _, line := range msg.Lines {
			m.size += uint64(len(line))
		}
		m.setContent()

		switch {
		case msg.Err != nil:
			m.err = msg.Err
			m.done = true
			m.status = "read error: " + msg.Err.Error()
		case msg.Done:
			m.done = true
		default:
			cmds = append(cmds, readLines(m.src))
		}

	case LogMsg:
		m.status = msg.String()
	}

	// Handle viewport updates.
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *TeaModel) setContent() {
	content := strings.TrimSuffix(strings.Join(m.lines, ""), "\n")
	if m.contentWidth > 0 {
		content = lipgloss.NewStyle().Width(m.contentWidth).Render(content)
	}
	m.viewport.SetContent(content)
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Loading the pager..."
	}

	state := "reading"
	if m.done {
		state = "complete"
	}

	info := fmt.Sprintf("%d lines, %s, %s, %3.f%%",
		len(m.lines),
		humanize.IBytes(m.size),
		state,
		m.viewport.ScrollPercent()*100, //nolint:mnd
	)
	if m.status != "" {
		info += " | " + m.status
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		borderStyle.Width(m.contentWidth).Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				titleStyle.Width(m.contentWidth).Render(m.title),
				m.viewport.View(),
			),
		),
		infoStyle.Width(m.contentWidth).Render(info),
		helpStyle.Width(m.contentWidth).Render("q: quit • g/G: top/bottom • ctrl+c: quit program"),
	)
}
