package ui

import (
	"strings"
	"time"

	"github.com/five82/submatch/internal/matching"
)

const runTimestampLayout = "2006-01-02 15:04:05"

// matcherStatus describes the latest matcher run for the panel.
func matcherStatus(data *matching.Data, scheduledAt time.Time) string {
	if data == nil {
		return "Matcher status unknown until the first snapshot arrives."
	}

	start, end := data.ParsedLatestStart(), data.ParsedLatestEnd()
	switch {
	case !scheduledAt.IsZero() && (end.IsZero() || end.Before(scheduledAt)):
		return "Matcher run scheduled at " + scheduledAt.Format(runTimestampLayout) + ", waiting for results."
	case start.IsZero():
		return "No matcher run has been executed yet."
	case data.MatcherRunning():
		return "Matching data is being computed, run started " + start.Format(runTimestampLayout) + "."
	default:
		return "Latest successful match data computed " +
			start.Format(runTimestampLayout) + " to " + end.Format(runTimestampLayout) + "."
	}
}

// canScheduleRun reports whether the schedule action is enabled.
func (m Model) canScheduleRun() bool {
	if m.scheduling || m.snapshot.Data == nil {
		return false
	}
	return !m.snapshot.Data.MatcherRunning()
}

// renderMatcherPanel renders the latest run summary and the schedule action.
func (m Model) renderMatcherPanel() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Matcher run"))
	b.WriteString("  ")
	b.WriteString(styles.Text.Render(matcherStatus(m.snapshot.Data, m.runScheduledAt)))
	b.WriteString("  ")

	switch {
	case m.scheduling:
		b.WriteString(styles.WarningText.Render("[scheduling…]"))
	case m.canScheduleRun():
		b.WriteString(styles.AccentText.Render("[r] Refresh matching data"))
	default:
		b.WriteString(styles.FaintText.Render("[r] Refresh matching data"))
	}
	return b.String()
}
