// Package spinner provides a terminal spinner with ticker-style status
// display for long-running conversions. The latest line of tool output
// is shown next to a spinning indicator, updating in place without
// polluting the terminal buffer.
package spinner

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Spinner displays a spinner with ticker-style status updates. Tool
// output lines are fed through Line, which is safe to call from the
// drain goroutines of a running conversion.
type Spinner struct {
	program *tea.Program
	lineCh  chan string
	once    sync.Once
	output  io.Writer
}

// New creates a new Spinner that writes to the given output (typically
// os.Stderr). If output is nil, os.Stderr is used.
func New(output io.Writer) *Spinner {
	if output == nil {
		output = os.Stderr
	}

	return &Spinner{
		lineCh: make(chan string, 100), // buffer so a slow redraw never blocks the tool drains
		output: output,
	}
}

// Line updates the status display with a new line of tool output.
// Blank lines are ignored, and lines arriving after Stop are dropped.
func (s *Spinner) Line(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	defer func() {
		// Sending on the closed channel after Stop is a benign race
		// between the tool drains and conversion teardown.
		_ = recover()
	}()
	select {
	case s.lineCh <- line:
	default: // drop rather than stall the conversion
	}
}

// Start begins the spinner display. This blocks until Stop is called,
// so run it in a goroutine alongside the conversion.
func (s *Spinner) Start() error {
	width := 80
	if fd := int(os.Stderr.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}

	s.program = tea.NewProgram(newModel(s.lineCh, width),
		tea.WithOutput(s.output),
		tea.WithoutSignalHandler(), // let parent handle signals
		tea.WithInput(nil),         // the conversion owns stdin
	)

	_, err := s.program.Run()
	return err
}

// Stop stops the spinner and clears its line from the terminal.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.lineCh)
	})
}

// model is the bubbletea model for the spinner.
type model struct {
	spinner    spinner.Model
	statusLine string
	width      int
	lineCh     <-chan string
	quitting   bool
}

// lineMsg is sent when a new tool output line arrives.
type lineMsg string

func newModel(lineCh <-chan string, width int) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		spinner: s,
		width:   width,
		lineCh:  lineCh,
	}
}

// Init implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForLine(m.lineCh),
	)
}

// Update implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case lineMsg:
		m.statusLine = string(msg)
		return m, waitForLine(m.lineCh)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.QuitMsg:
		m.quitting = true
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) View() string {
	if m.quitting {
		return "" // clear the line on exit
	}

	// Spinner is typically 2 chars + 1 space
	spinnerWidth := 3
	maxLineWidth := m.width - spinnerWidth
	if maxLineWidth < 10 {
		maxLineWidth = 10
	}

	line := truncate(m.statusLine, maxLineWidth)
	return m.spinner.View() + " " + line
}

// waitForLine returns a command that waits for the next tool output line.
func waitForLine(lineCh <-chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-lineCh
		if !ok {
			return tea.Quit()
		}
		return lineMsg(line)
	}
}

// truncate shortens a string to fit within maxWidth, adding "..." when
// anything is cut.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return ""
	}
	if len(s) <= maxWidth {
		return s
	}
	return s[:maxWidth-3] + "..."
}
