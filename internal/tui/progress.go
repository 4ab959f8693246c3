package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vaultsync.dev/vaultsync/internal/engine"
)

// EventMsg carries one engine event into the progress view
type EventMsg engine.Event

// ProgressDoneMsg is sent when the operation behind the view returns
type ProgressDoneMsg struct {
	Err error
}

type progressStep struct {
	State   engine.State
	Message string
}

type progressStyles struct {
	Spinner lipgloss.Style
	Done    lipgloss.Style
	Error   lipgloss.Style
	Warn    lipgloss.Style
	State   lipgloss.Style
	Dim     lipgloss.Style
}

func defaultProgressStyles() progressStyles {
	return progressStyles{
		Spinner: lipgloss.NewStyle().Foreground(colorAccent),
		Done:    lipgloss.NewStyle().Foreground(colorOK),
		Error:   lipgloss.NewStyle().Foreground(colorErr),
		Warn:    lipgloss.NewStyle().Foreground(colorWarn),
		State:   lipgloss.NewStyle().Foreground(colorInfo).Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(colorDim),
	}
}

// ProgressModel is the bubbletea model showing the sync state machine as it
// moves. Each transition becomes a line; the newest line spins until the
// next transition or the end of the run.
type ProgressModel struct {
	Title    string
	Steps    []progressStep
	Warnings []string
	Spinner  spinner.Model
	Done     bool
	Err      error
	Canceled bool

	cancel context.CancelFunc
	styles progressStyles
}

// NewProgressModel creates a progress model. cancel is invoked when the
// operator presses ctrl+c and may be nil; the engine stops at the next
// state rather than interrupting a running git command.
func NewProgressModel(title string, cancel context.CancelFunc) *ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	styles := defaultProgressStyles()
	s.Style = styles.Spinner

	return &ProgressModel{
		Title:   title,
		Spinner: s,
		cancel:  cancel,
		styles:  styles,
	}
}

// Init starts the spinner
func (m *ProgressModel) Init() tea.Cmd {
	return m.Spinner.Tick
}

// Update handles messages and updates the model.
func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && !m.Canceled {
			m.Canceled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case spinner.TickMsg:
		if m.Done {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case EventMsg:
		switch msg.Kind {
		case engine.EventTransition:
			m.Steps = append(m.Steps, progressStep{State: msg.To})
		case engine.EventInfo:
			if n := len(m.Steps); n > 0 {
				m.Steps[n-1].Message = msg.Message
			}
		case engine.EventWarn:
			m.Warnings = append(m.Warnings, msg.Message)
		}
		return m, nil

	case ProgressDoneMsg:
		m.Done = true
		m.Err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the model as a string.
func (m *ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.Title))
	b.WriteString("\n")

	for i, step := range m.Steps {
		last := i == len(m.Steps)-1
		var icon string
		switch {
		case step.State == engine.Failed:
			icon = m.styles.Error.Render("✗")
		case last && !m.Done:
			icon = m.Spinner.View()
		default:
			icon = m.styles.Done.Render("✓")
		}

		name := m.styles.State.Render(step.State.String())
		if step.State == engine.Failed {
			name = m.styles.Error.Render(step.State.String())
		}
		line := fmt.Sprintf("  %s %s", icon, name)
		if step.Message != "" {
			line += " " + m.styles.Dim.Render(step.Message)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	for _, w := range m.Warnings {
		b.WriteString("  " + m.styles.Warn.Render("! "+w) + "\n")
	}

	if m.Canceled && !m.Done {
		b.WriteString(m.styles.Dim.Render("  canceling once the current git command finishes...") + "\n")
	}
	return b.String()
}

// ProgressFunc is the operation shown by RunProgress. It must pass obs to
// the engine it drives and honor ctx.
type ProgressFunc func(ctx context.Context, obs engine.Observer) error

// RunProgress runs fn while a live view of its state transitions is shown.
// Without a TTY, fn runs with events logged through splog instead. Console
// logging is muted while the view is up; the log file still receives every
// event.
func RunProgress(ctx context.Context, splog *Splog, title string, fn ProgressFunc) error {
	logObs := NewSplogObserver(splog)
	if !IsTTY() {
		return fn(ctx, logObs)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewProgressModel(title, cancel)
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))

	wasQuiet := splog.IsQuiet()
	splog.SetQuiet(true)
	defer splog.SetQuiet(wasQuiet)

	done := make(chan error, 1)
	go func() {
		obs := engine.MultiObserver{
			engine.ObserverFunc(func(ev engine.Event) { p.Send(EventMsg(ev)) }),
			logObs,
		}
		err := fn(ctx, obs)
		done <- err
		p.Send(ProgressDoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("progress view failed: %w", err)
	}
	return <-done
}
