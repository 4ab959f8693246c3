package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// EnvNoInteractive disables every prompt when set
const EnvNoInteractive = "VAULTSYNC_NO_INTERACTIVE"

// ErrInteractiveDisabled is returned by prompts when no answer can be asked for
var ErrInteractiveDisabled = errors.New("interactive prompts are disabled")

// ErrCanceled is returned when the operator abandons a prompt
var ErrCanceled = errors.New("canceled")

func checkInteractiveAllowed() error {
	if os.Getenv(EnvNoInteractive) != "" || !IsTTY() {
		return ErrInteractiveDisabled
	}
	return nil
}

// TextInputModel asks for one line of text. Enter is refused while Validate
// rejects the value; the rejection is shown under the input.
type TextInputModel struct {
	Input    textinput.Model
	Prompt   string
	Validate func(string) error
	Done     bool
	Err      error

	invalid error
}

// NewTextInputModel creates a focused text input holding defaultValue
func NewTextInputModel(prompt, defaultValue string, validate func(string) error) TextInputModel {
	ti := textinput.New()
	ti.SetValue(defaultValue)
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 80

	return TextInputModel{Input: ti, Prompt: prompt, Validate: validate}
}

// Init starts the cursor blinking
func (m TextInputModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses
func (m TextInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			value := strings.TrimSpace(m.Input.Value())
			if m.Validate != nil {
				if err := m.Validate(value); err != nil {
					m.invalid = err
					return m, nil
				}
			}
			m.Done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.Err = ErrCanceled
			m.Done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		m.invalid = nil
	}
	return m, cmd
}

// View renders the prompt
func (m TextInputModel) View() string {
	if m.Done {
		return ""
	}
	var b strings.Builder
	b.WriteString(Bold(m.Prompt))
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	b.WriteString("\n")
	if m.invalid != nil {
		b.WriteString(ColorRed(m.invalid.Error()))
		b.WriteString("\n")
	}
	b.WriteString(ColorDim("(Enter to submit, Esc to cancel)"))
	return lipgloss.NewStyle().Margin(1, 0).Render(b.String())
}

// Value returns the trimmed input
func (m TextInputModel) Value() string {
	return strings.TrimSpace(m.Input.Value())
}

// PromptText asks for a line of text, re-asking until validate accepts it.
// validate may be nil.
func PromptText(prompt, defaultValue string, validate func(string) error) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}

	p := tea.NewProgram(NewTextInputModel(prompt, defaultValue, validate),
		tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	model, err := p.Run()
	if err != nil {
		return "", err
	}

	final, ok := model.(TextInputModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type %T", model)
	}
	if final.Err != nil {
		return "", final.Err
	}
	return final.Value(), nil
}

// PromptSelect asks the operator to pick one of options
func PromptSelect(message string, options []string, defaultValue string) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided")
	}

	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	for _, o := range options {
		if o == defaultValue {
			prompt.Default = defaultValue
			break
		}
	}

	var answer string
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", surveyErr(err)
	}
	return answer, nil
}

// PromptConfirm asks a yes/no question
func PromptConfirm(message string, defaultValue bool) (bool, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return false, err
	}

	var answer bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: defaultValue}, &answer); err != nil {
		return false, surveyErr(err)
	}
	return answer, nil
}

func surveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrCanceled
	}
	return err
}
