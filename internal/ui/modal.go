package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Modal is a dialog that takes every key while open. Update returns the
// updated modal, a command, and whether the modal should close.
type Modal interface {
	Update(msg tea.KeyMsg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}
