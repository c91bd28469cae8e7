package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application. Bindings that
// fire while a text field has focus use ctrl or function keys.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Forms
	Next          key.Binding
	Prev          key.Binding
	Submit        key.Binding
	ToggleMode    key.Binding
	ToggleMark    key.Binding
	Logout        key.Binding
	FormQuit      key.Binding
	FormHelp      key.Binding
	FormTheme     key.Binding
	ToggleLogPane key.Binding

	// Progress and result
	Cancel  key.Binding
	Open    key.Binding
	NewPost key.Binding
	Back    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1", "?"),
			key.WithHelp("f1/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T", "f2"),
			key.WithHelp("T/f2", "Cycle theme"),
		),

		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Submit"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "Password / token login"),
		),
		ToggleMark: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "Toggle watermark"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "Log out"),
		),
		FormQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		FormHelp: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "Toggle help"),
		),
		FormTheme: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "Cycle theme"),
		),
		ToggleLogPane: key.NewBinding(
			key.WithKeys("ctrl+l", "l"),
			key.WithHelp("l", "Toggle log pane"),
		),

		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel upload"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Open draft in browser"),
		),
		NewPost: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New post"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Submit},
		{k.ToggleMode, k.ToggleMark, k.Logout},
		{k.Cancel, k.Open, k.NewPost, k.ToggleLogPane},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
