package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the console-level keyboard bindings. Table keys live in
// listview.KeyMap.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Tabs
	NextTab key.Binding
	PrevTab key.Binding
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Tab4    key.Binding
	Back    key.Binding
	Forward key.Binding

	// Actions
	ScheduleRun key.Binding
	AddPin      key.Binding
	DeletePin   key.Binding

	// Forms
	Confirm   key.Binding
	NextField key.Binding
	PrevField key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close"),
		),

		// Tabs
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous tab"),
		),
		Tab1: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Subscriptions"),
		),
		Tab2: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Unmatched products"),
		),
		Tab3: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Pins"),
		),
		Tab4: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Messages"),
		),
		Back: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Forward"),
		),

		// Actions
		ScheduleRun: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Schedule matcher run"),
		),
		AddPin: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add pin"),
		),
		DeletePin: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Delete selected pin"),
		),

		// Forms
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
	}
}

// tabKeys returns the direct tab bindings in tab order.
func (k keyMap) tabKeys() []key.Binding {
	return []key.Binding{k.Tab1, k.Tab2, k.Tab3, k.Tab4}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.ScheduleRun, k.AddPin, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.Back, k.Forward},
		{k.ScheduleRun, k.AddPin, k.DeletePin},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
