package listview

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the bindings a list reacts to.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	PrevPage     key.Binding
	NextPage     key.Binding
	FirstPage    key.Binding
	LastPage     key.Binding
	BiggerPages  key.Binding
	SmallerPages key.Binding
	CycleSort    key.Binding
	FlipSort     key.Binding
	Search       key.Binding
	EndSearch    key.Binding
}

// DefaultKeyMap returns the default list bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "pgup"),
			key.WithHelp("left", "Previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "pgdown"),
			key.WithHelp("right", "Next page"),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "First page"),
		),
		LastPage: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Last page"),
		),
		BiggerPages: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "More items per page"),
		),
		SmallerPages: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Fewer items per page"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Sort by next column"),
		),
		FlipSort: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Reverse sort"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		EndSearch: key.NewBinding(
			key.WithKeys("enter", "esc"),
			key.WithHelp("enter/esc", "Leave search"),
		),
	}
}
