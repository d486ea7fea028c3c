package ui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrInterrupted is returned when the user aborts a spinner with ctrl+c
var ErrInterrupted = errors.New("interrupted")

// workDoneMsg carries the result of the background operation
type workDoneMsg struct{ err error }

// spinnerModel shows a spinner and a label until the operation finishes
type spinnerModel struct {
	spinner spinner.Model
	label   string
	err     error
	done    bool
	cancel  context.CancelFunc
}

func newSpinnerModel(label string, cancel context.CancelFunc) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)
	return spinnerModel{spinner: s, label: label, cancel: cancel}
}

// Init implements tea.Model
func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.err = ErrInterrupted
			m.done = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("  %s %s\n", m.spinner.View(), m.label)
}

// RunWithSpinner runs op while showing a spinner with label on out. When
// out is not a terminal op runs without any output.
func RunWithSpinner(ctx context.Context, out *os.File, label string, op func(ctx context.Context) error) error {
	if out == nil || !IsTerminal(out) {
		return op(ctx)
	}
	return runSpinner(ctx, label, op, tea.WithOutput(out))
}

func runSpinner(ctx context.Context, label string, op func(ctx context.Context) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append(opts, tea.WithContext(ctx))
	p := tea.NewProgram(newSpinnerModel(label, cancel), opts...)

	done := make(chan error, 1)
	go func() {
		err := op(ctx)
		done <- err
		p.Send(workDoneMsg{err: err})
	}()

	final, runErr := p.Run()
	if m, ok := final.(spinnerModel); ok && m.done {
		if errors.Is(m.err, ErrInterrupted) {
			return ErrInterrupted
		}
		return m.err
	}

	// The program stopped before the operation reported back
	err := <-done
	if err == nil && runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return err
}
