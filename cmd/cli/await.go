package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type awaitDoneMsg struct {
	err error
}

// awaitModel renders a spinner while a blocking wait runs. The wait is
// cancelled through the context when the user quits.
type awaitModel struct {
	label    string
	spinner  spinner.Model
	wait     func() error
	cancel   context.CancelFunc
	err      error
	quitting bool
}

func newAwaitModel(label string, cancel context.CancelFunc, wait func() error) awaitModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6"))

	return awaitModel{
		label:   label,
		spinner: s,
		wait:    wait,
		cancel:  cancel,
	}
}

func (m awaitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runWait)
}

func (m awaitModel) runWait() tea.Msg {
	return awaitDoneMsg{err: m.wait()}
}

func (m awaitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// Cancel the wait; the done message follows and quits
			m.quitting = true
			m.cancel()
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case awaitDoneMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.WindowSizeMsg:
		return m, nil
	}

	return m, nil
}

func (m awaitModel) View() string {
	if m.quitting {
		return fmt.Sprintf("\n %s Cancelling...\n\n", m.spinner.View())
	}
	return fmt.Sprintf("\n %s %s (q to cancel)\n\n", m.spinner.View(), m.label)
}

// awaitSpinner runs wait under a spinner and returns its result.
func awaitSpinner(ctx context.Context, label string, wait func(context.Context) error) error {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newAwaitModel(label, cancel, func() error {
		return wait(waitCtx)
	})

	program := tea.NewProgram(model)

	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("terminal error: %w", err)
	}

	final, ok := finalModel.(awaitModel)
	if !ok {
		return fmt.Errorf("unexpected model type returned from the terminal program")
	}

	return final.err
}
