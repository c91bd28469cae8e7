package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// form is a vertical stack of text inputs with one focused field.
type form struct {
	inputs []textinput.Model
	focus  int
}

func newInput(prompt, placeholder string, secret bool) textinput.Model {
	in := textinput.New()
	in.Prompt = padRight(prompt, 10)
	in.Placeholder = placeholder
	in.CharLimit = 4096
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

func newForm(inputs ...textinput.Model) form {
	f := form{inputs: inputs}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.focus = (i%len(f.inputs) + len(f.inputs)) % len(f.inputs)
	var cmd tea.Cmd
	for idx := range f.inputs {
		if idx == f.focus {
			cmd = f.inputs[idx].Focus()
		} else {
			f.inputs[idx].Blur()
		}
	}
	return cmd
}

func (f *form) blur() {
	for idx := range f.inputs {
		f.inputs[idx].Blur()
	}
}

func (f *form) move(delta int) tea.Cmd {
	return f.setFocus(f.focus + delta)
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f form) value(i int) string {
	if i < 0 || i >= len(f.inputs) {
		return ""
	}
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f form) atLast() bool {
	return f.focus == len(f.inputs)-1
}

func (f *form) setWidth(w int) {
	for idx := range f.inputs {
		f.inputs[idx].Width = w
	}
}

func (f form) view() string {
	lines := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		lines[i] = in.View()
	}
	return strings.Join(lines, "\n")
}
