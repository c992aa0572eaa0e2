package listview

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// CellsFunc renders a row as one string per header.
type CellsFunc[T any] func(row T) []string

// Model is the Bubble Tea component around a List.
type Model[T any] struct {
	list      *List[T]
	cells     CellsFunc[T]
	keys      KeyMap
	styles    Styles
	search    textinput.Model
	searching bool
	cursor    int
	width     int
}

// NewModel builds a list component. cells turns a row into display strings.
func NewModel[T any](cfg Config[T], rows []T, cells CellsFunc[T], styles Styles) Model[T] {
	l := New(cfg, rows)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = cfg.Placeholder
	search.CharLimit = 120
	search.SetValue(l.State().FilterText)

	return Model[T]{
		list:   l,
		cells:  cells,
		keys:   DefaultKeyMap(),
		styles: styles,
		search: search,
	}
}

// List exposes the underlying list.
func (m Model[T]) List() *List[T] {
	return m.list
}

// Searching reports whether the search input has focus. Owners should not
// interpret keys while it does.
func (m Model[T]) Searching() bool {
	return m.searching
}

// SetRows replaces the rows, keeping page and cursor within range.
func (m *Model[T]) SetRows(rows []T) {
	m.list.SetRows(rows)
	m.clampCursor()
}

// SetWidth sets the width available for rendering.
func (m *Model[T]) SetWidth(width int) {
	m.width = width
}

// SetStyles replaces the styles, for example after a theme change.
func (m *Model[T]) SetStyles(styles Styles) {
	m.styles = styles
}

// Selected returns the row under the cursor on the current page.
func (m Model[T]) Selected() (T, bool) {
	page := m.list.Page()
	if m.cursor < 0 || m.cursor >= len(page.Rows) {
		var zero T
		return zero, false
	}
	return page.Rows[m.cursor], true
}

// Cursor returns the cursor position within the current page.
func (m Model[T]) Cursor() int {
	return m.cursor
}

// Init implements tea.Model.
func (m Model[T]) Init() tea.Cmd {
	return nil
}

// Update handles key messages for the list.
func (m Model[T]) Update(msg tea.Msg) (Model[T], tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.searching {
		if key.Matches(keyMsg, m.keys.EndSearch) {
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(keyMsg)
		if value := m.search.Value(); value != m.list.State().FilterText {
			m.list.SetFilterText(value)
			m.clampCursor()
		}
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Search):
		if !m.list.HasSearch() {
			return m, nil
		}
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.list.Page().Rows)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.PrevPage):
		m.list.PrevPage()
		m.cursor = 0
	case key.Matches(keyMsg, m.keys.NextPage):
		m.list.NextPage()
		m.cursor = 0
	case key.Matches(keyMsg, m.keys.FirstPage):
		m.list.FirstPage()
		m.cursor = 0
	case key.Matches(keyMsg, m.keys.LastPage):
		m.list.LastPage()
		m.cursor = 0
	case key.Matches(keyMsg, m.keys.BiggerPages):
		m.list.StepItemsPerPage(1)
		m.clampCursor()
	case key.Matches(keyMsg, m.keys.SmallerPages):
		m.list.StepItemsPerPage(-1)
		m.clampCursor()
	case key.Matches(keyMsg, m.keys.CycleSort):
		m.list.CycleSortColumn()
	case key.Matches(keyMsg, m.keys.FlipSort):
		m.list.ToggleSort(m.list.State().SortColumnIndex)
	}
	return m, nil
}

func (m *Model[T]) clampCursor() {
	n := len(m.list.Page().Rows)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
