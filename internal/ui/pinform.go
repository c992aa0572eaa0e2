package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pinFormSubmitMsg carries a validated new pin out of the form.
type pinFormSubmitMsg struct {
	systemID       int64
	subscriptionID int64
}

// pinForm asks for the system and subscription of a new pin.
type pinForm struct {
	inputs [2]textinput.Model // system, subscription
	focus  int
	err    string
}

func newPinForm() *pinForm {
	f := &pinForm{}
	for i, placeholder := range []string{"System ID", "Subscription ID"} {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 19
		in.Prompt = ""
		f.inputs[i] = in
	}
	f.inputs[0].Focus()
	return f
}

func (f *pinForm) Update(msg tea.KeyMsg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Escape):
		return f, nil, true
	case key.Matches(msg, keys.NextField):
		f.setFocus(f.focus + 1)
		return f, nil, false
	case key.Matches(msg, keys.PrevField):
		f.setFocus(f.focus - 1)
		return f, nil, false
	case key.Matches(msg, keys.Confirm):
		if f.focus == 0 {
			f.setFocus(1)
			return f, nil, false
		}
		submit, err := f.values()
		if err != "" {
			f.err = err
			return f, nil, false
		}
		return f, func() tea.Msg { return submit }, true
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.err = ""
	return f, cmd, false
}

func (f *pinForm) setFocus(idx int) {
	n := len(f.inputs)
	idx = ((idx % n) + n) % n
	f.inputs[f.focus].Blur()
	f.focus = idx
	f.inputs[f.focus].Focus()
}

func (f *pinForm) values() (pinFormSubmitMsg, string) {
	systemID, ok := parseID(f.inputs[0].Value())
	if !ok {
		return pinFormSubmitMsg{}, "System ID must be a positive number"
	}
	subscriptionID, ok := parseID(f.inputs[1].Value())
	if !ok {
		return pinFormSubmitMsg{}, "Subscription ID must be a positive number"
	}
	return pinFormSubmitMsg{systemID: systemID, subscriptionID: subscriptionID}, ""
}

func (f *pinForm) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	labels := []string{"System", "Subscription"}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Add Pin"))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Muted)).Width(14)
	for i, in := range f.inputs {
		label := labelStyle
		if i == f.focus {
			label = label.Foreground(lipgloss.Color(theme.Accent))
		}
		b.WriteString(label.Render(labels[i]))
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if f.err != "" {
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("enter confirm · tab next field · esc cancel"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.BorderFocus)).
		Padding(1, 2).
		Width(48)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

func parseID(value string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
