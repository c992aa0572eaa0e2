package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/submatch/internal/state"
	"github.com/five82/submatch/internal/tabs"
)

const warningMarker = "⚠"

// renderHeader renders the status bar: logo, connection phase, server,
// last update and the latest fetch error.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newSurface(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{
		bg.text("submatch", styles.Logo),
		m.renderPhase(bg),
	}

	if !compact && m.serverURL != "" {
		parts = append(parts, bg.text(truncateMiddle(m.serverURL, 40), styles.MutedText))
	}

	if ts := formatTimestamp(m.snapshot.LastUpdated, time.Now()); ts != "" {
		parts = append(parts,
			bg.text("Updated", styles.MutedText)+bg.space()+bg.text(ts, styles.Text))
	}

	if m.snapshot.LastError != nil {
		maxErr := 80
		if compact {
			maxErr = 40
		}
		label := classifyConnectionError(m.snapshot.LastError)
		errText := truncate(firstLine(m.snapshot.LastError.Error()), maxErr)
		parts = append(parts,
			bg.text(label, styles.DangerText.Bold(true))+bg.space()+
				bg.text(errText, styles.DangerText))
	}

	return styles.Header.Width(m.width).Render(bg.join(parts, "  "))
}

// phaseLabel names the connection state shown in the header.
func phaseLabel(snap state.Snapshot) string {
	if snap.IsOffline() {
		return "offline"
	}
	return snap.Phase.String()
}

func (m Model) renderPhase(bg surface) string {
	label := phaseLabel(m.snapshot)
	color := m.theme.StatusColors[label]
	if color == "" {
		color = m.theme.Muted
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
	return bg.text("● "+strings.ToUpper(label), style)
}

// renderTabBar renders the tab labels with their warning markers.
func (m Model) renderTabBar() string {
	styles := m.theme.Styles()
	data := m.snapshot.Data
	active := m.activeIndex()

	segments := make([]string, 0, len(tabs.Anchors))
	for i, anchor := range tabs.Anchors {
		label := fmt.Sprintf(" %d %s ", i+1, tabs.Label(anchor))
		if data != nil && tabs.NeedsAttention(anchor, *data) {
			label = fmt.Sprintf(" %d %s %s ", i+1, tabs.Label(anchor), warningMarker)
		}
		style := styles.MutedText
		if i == active {
			style = styles.Selected.Bold(true)
		}
		segments = append(segments, style.Render(label))
	}
	return strings.Join(segments, " ")
}

// renderCommandBar renders the command hints and the latest notice.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newSurface(m.theme.Surface)

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"1-4", "Tabs"},
		{"[/]", "History"},
		{"/", "Filter"},
		{"r", "Run matcher"},
	}
	if m.activeAnchor() == tabs.Pins {
		commands = append(commands, cmd{"a", "Add pin"}, cmd{"x", "Delete pin"})
	} else {
		commands = append(commands, cmd{"a", "Add pin"})
	}
	commands = append(commands, cmd{"?", "More"})

	colon := bg.sep(":")
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.text(c.key, styles.AccentText)+colon+bg.text(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.text("T", styles.AccentText)+colon+bg.text(m.theme.Name, styles.FaintText))

	if m.notice != "" {
		style := styles.SuccessText
		if m.noticeIsError {
			style = styles.DangerText
		}
		segments = append(segments, bg.text(truncate(m.notice, 60), style))
	}

	return styles.Footer.Width(m.width).Render(strings.Join(segments, bg.spaces(2)))
}

func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "UNREACHABLE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(msg, "status 401"), strings.Contains(msg, "status 403"):
		return "DENIED"
	default:
		return "ERROR"
	}
}

// formatTimestamp formats the last update time with a relative indicator.
func formatTimestamp(updated, now time.Time) string {
	if updated.IsZero() {
		return ""
	}

	since := now.Sub(updated)
	out := updated.Format("15:04:05")

	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}
