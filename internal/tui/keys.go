package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit key.Binding
	Help key.Binding

	// Text fields own these while a page is capturing input; the shell
	// shortcuts bound to them stay reachable through their alt aliases.
	TextEditing key.Binding

	NewNotes      key.Binding
	NewFlowcharts key.Binding
	NewChat       key.Binding
	Close         key.Binding
	Cycle         key.Binding

	// Panels shell.
	Maximize   key.Binding
	Minimize   key.Binding
	MoveUp     key.Binding
	MoveDown   key.Binding
	MoveLeft   key.Binding
	MoveRight  key.Binding
	GrowWidth  key.Binding
	ShrinkWide key.Binding
	GrowHeight key.Binding
	ShrinkTall key.Binding

	// Workspaces shell.
	NewWorkspace   key.Binding
	CloseWorkspace key.Binding
	NextWorkspace  key.Binding
	PrevWorkspace  key.Binding
	ToggleSide     key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+q", "quit")),
	Help: key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),

	TextEditing: key.NewBinding(key.WithKeys("ctrl+n", "ctrl+f")),

	NewNotes:      key.NewBinding(key.WithKeys("ctrl+n", "alt+1"), key.WithHelp("ctrl+n", "notes")),
	NewFlowcharts: key.NewBinding(key.WithKeys("ctrl+f", "alt+2"), key.WithHelp("ctrl+f", "flowcharts")),
	NewChat:       key.NewBinding(key.WithKeys("ctrl+g", "alt+3"), key.WithHelp("ctrl+g", "AI chat")),
	Close:         key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "close")),
	Cycle:         key.NewBinding(key.WithKeys("ctrl+]", "alt+]"), key.WithHelp("ctrl+]", "next")),

	Maximize:   key.NewBinding(key.WithKeys("alt+m"), key.WithHelp("alt+m", "maximize")),
	Minimize:   key.NewBinding(key.WithKeys("alt+z"), key.WithHelp("alt+z", "minimize")),
	MoveUp:     key.NewBinding(key.WithKeys("alt+up"), key.WithHelp("alt+↑↓←→", "move")),
	MoveDown:   key.NewBinding(key.WithKeys("alt+down")),
	MoveLeft:   key.NewBinding(key.WithKeys("alt+left")),
	MoveRight:  key.NewBinding(key.WithKeys("alt+right")),
	GrowWidth:  key.NewBinding(key.WithKeys("alt+shift+right"), key.WithHelp("alt+shift+↑↓←→", "resize")),
	ShrinkWide: key.NewBinding(key.WithKeys("alt+shift+left")),
	GrowHeight: key.NewBinding(key.WithKeys("alt+shift+down")),
	ShrinkTall: key.NewBinding(key.WithKeys("alt+shift+up")),

	NewWorkspace:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "new workspace")),
	CloseWorkspace: key.NewBinding(key.WithKeys("alt+w"), key.WithHelp("alt+w", "close workspace")),
	NextWorkspace:  key.NewBinding(key.WithKeys("ctrl+pgdown", "alt+right"), key.WithHelp("alt+→", "next workspace")),
	PrevWorkspace:  key.NewBinding(key.WithKeys("ctrl+pgup", "alt+left"), key.WithHelp("alt+←", "previous workspace")),
	ToggleSide:     key.NewBinding(key.WithKeys("alt+s"), key.WithHelp("alt+s", "toggle add to side")),
}
