package listview

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	columnGap      = 2
	minColumnWidth = 4
	maxColumnWidth = 48
)

// Styles are the lipgloss styles a list renders with.
type Styles struct {
	Header       lipgloss.Style
	SortableHead lipgloss.Style
	ActiveHead   lipgloss.Style
	Row          lipgloss.Style
	AltRow       lipgloss.Style
	Selected     lipgloss.Style
	Muted        lipgloss.Style
	Button       lipgloss.Style
	Disabled     lipgloss.Style
}

// DefaultStyles returns uncolored styles, useful in tests.
func DefaultStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:       plain.Bold(true),
		SortableHead: plain.Bold(true).Underline(true),
		ActiveHead:   plain.Bold(true).Underline(true),
		Row:          plain,
		AltRow:       plain,
		Selected:     plain.Reverse(true),
		Muted:        plain.Faint(true),
		Button:       plain,
		Disabled:     plain.Faint(true),
	}
}

// View renders the search line, header, rows and pagination footer.
func (m Model[T]) View() string {
	page := m.list.Page()
	state := m.list.State()
	headers := m.list.Headers()

	rows := make([][]string, len(page.Rows))
	for i, row := range page.Rows {
		rows[i] = m.cells(row)
	}
	widths := columnWidths(headers, rows, m.width)

	var b strings.Builder

	// Top line: search box, item counter, page size
	var top []string
	if m.list.HasSearch() {
		if m.searching || state.FilterText != "" {
			top = append(top, m.search.View())
		} else {
			top = append(top, m.styles.Muted.Render("/ "+placeholderOr(m.list.Placeholder())))
		}
	}
	top = append(top, page.ItemsLabel())
	top = append(top, m.styles.Muted.Render(strconv.Itoa(state.ItemsPerPage)+" items per page"))
	b.WriteString(strings.Join(top, "   "))
	b.WriteString("\n")

	// Header row
	cells := make([]string, len(headers))
	for i, h := range headers {
		label := h
		style := m.styles.Header
		if m.list.IsSortable(i) {
			style = m.styles.SortableHead
		}
		if i == state.SortColumnIndex && m.list.cfg.Compare != nil {
			label += " " + sortArrow(state.SortAscending)
			if m.list.IsSortable(i) {
				style = m.styles.ActiveHead
			}
		}
		cells[i] = style.Render(fit(label, widths[i]))
	}
	b.WriteString(strings.Join(cells, strings.Repeat(" ", columnGap)))
	b.WriteString("\n")

	if len(rows) == 0 {
		b.WriteString(m.styles.Muted.Render("No items"))
		b.WriteString("\n")
	}
	for i, rowCells := range rows {
		style := m.styles.Row
		if i%2 == 1 {
			style = m.styles.AltRow
		}
		if i == m.cursor {
			style = m.styles.Selected
		}
		line := make([]string, len(headers))
		for c := range headers {
			value := ""
			if c < len(rowCells) {
				value = rowCells[c]
			}
			line[c] = fit(value, widths[c])
		}
		b.WriteString(style.Render(strings.Join(line, strings.Repeat(" ", columnGap))))
		b.WriteString("\n")
	}

	// Footer: page position and navigation controls
	b.WriteString(m.styles.Muted.Render(page.PageLabel()))
	if page.LastPage > 1 {
		b.WriteString("   ")
		b.WriteString(strings.Join([]string{
			m.button("First", page.HasPrev()),
			m.button("Prev", page.HasPrev()),
			m.button("Next", page.HasNext()),
			m.button("Last", page.HasNext()),
		}, " "))
	}
	return b.String()
}

func (m Model[T]) button(label string, enabled bool) string {
	text := "[" + label + "]"
	if !enabled {
		return m.styles.Disabled.Render(text)
	}
	return m.styles.Button.Render(text)
}

func sortArrow(ascending bool) string {
	if ascending {
		return "▲"
	}
	return "▼"
}

func placeholderOr(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Search"
	}
	return value
}

// columnWidths sizes each column to its widest cell, capped, then shrinks
// the widest columns until the row fits in total (when total > 0).
func columnWidths(headers []string, rows [][]string, total int) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h) + 2 // room for the sort arrow
	}
	for _, row := range rows {
		for i := range headers {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
			}
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], minColumnWidth), maxColumnWidth)
	}
	if total <= 0 {
		return widths
	}
	budget := total - columnGap*(len(widths)-1)
	for sum(widths) > budget {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// fit truncates or pads value to exactly width cells.
func fit(value string, width int) string {
	value = runewidth.Truncate(value, width, "…")
	return runewidth.FillRight(value, width)
}
