package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user aborts a prompt
var ErrCancelled = errors.New("cancelled")

type passwordPrompt struct {
	input     textinput.Model
	cancelled bool
	done      bool
}

// PromptPassword reads a secret from the terminal without echoing it
func PromptPassword(label string) (string, error) {
	input := textinput.New()
	input.Prompt = label + ": "
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.CharLimit = 128
	input.Focus()

	final, err := tea.NewProgram(passwordPrompt{input: input}).Run()
	if err != nil {
		return "", err
	}
	p, ok := final.(passwordPrompt)
	if !ok || p.cancelled {
		return "", ErrCancelled
	}
	return p.input.Value(), nil
}

func (p passwordPrompt) Init() tea.Cmd {
	return textinput.Blink
}

func (p passwordPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			p.done = true
			return p, tea.Quit
		case "ctrl+c", "esc":
			p.cancelled = true
			return p, tea.Quit
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p passwordPrompt) View() string {
	if p.done || p.cancelled {
		return ""
	}
	return p.input.View() + "\n"
}
