package listview

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// PageSizes are the page sizes a list accepts, smallest first.
var PageSizes = []int{5, 10, 15, 25, 50, 100, 250, 500}

// DefaultItemsPerPage is the page size of a fresh list.
const DefaultItemsPerPage = 15

// ErrPageSize is returned when a page size outside PageSizes is requested.
var ErrPageSize = errors.New("unsupported page size")

// ViewState is the user adjustable part of a list. Callers may keep it
// across list instances to restore a view.
type ViewState struct {
	CurrentPage     int    `toml:"current_page" json:"currentPage"`
	ItemsPerPage    int    `toml:"items_per_page" json:"itemsPerPage"`
	FilterText      string `toml:"filter_text" json:"filterText"`
	SortColumnIndex int    `toml:"sort_column" json:"sortColumnIndex"`
	SortAscending   bool   `toml:"sort_ascending" json:"sortAscending"`
}

// DefaultState returns the state of a list nobody touched yet.
func DefaultState() ViewState {
	return ViewState{
		CurrentPage:   1,
		ItemsPerPage:  DefaultItemsPerPage,
		SortAscending: true,
	}
}

// FilterFunc reports whether a row matches the search text.
type FilterFunc[T any] func(row T, text string) bool

// CompareFunc orders two rows for the given column and direction. It returns
// a negative number when a sorts before b, zero when they tie, positive
// otherwise.
type CompareFunc[T any] func(a, b T, column int, ascending bool) int

// StateAccessor lets the owner of a list keep its ViewState. Load reports
// false when nothing was stored yet.
type StateAccessor struct {
	Load func() (ViewState, bool)
	Save func(ViewState)
}

// Config describes a list. Filter, Compare and State are optional. Only the
// columns listed in Sortable can change the sort column.
type Config[T any] struct {
	Headers     []string
	Filter      FilterFunc[T]
	Placeholder string
	Compare     CompareFunc[T]
	Sortable    []int
	State       StateAccessor
}

// List filters, sorts and paginates rows. It never inspects a row except
// through the configured Filter and Compare functions.
type List[T any] struct {
	cfg   Config[T]
	rows  []T
	state ViewState
}

// New builds a list over rows, restoring state through cfg.State when the
// owner has one stored.
func New[T any](cfg Config[T], rows []T) *List[T] {
	l := &List[T]{cfg: cfg, rows: rows, state: DefaultState()}
	if cfg.State.Load != nil {
		if stored, ok := cfg.State.Load(); ok {
			l.state = l.normalize(stored)
		}
	}
	l.clamp()
	return l
}

// Headers returns the column labels.
func (l *List[T]) Headers() []string {
	return l.cfg.Headers
}

// Placeholder returns the search input placeholder.
func (l *List[T]) Placeholder() string {
	return l.cfg.Placeholder
}

// HasSearch reports whether the list was given a filter predicate.
func (l *List[T]) HasSearch() bool {
	return l.cfg.Filter != nil
}

// IsSortable reports whether clicking column toggles the sort.
func (l *List[T]) IsSortable(column int) bool {
	return slices.Contains(l.cfg.Sortable, column)
}

// SortableColumns returns the sortable column indexes in ascending order.
func (l *List[T]) SortableColumns() []int {
	cols := make([]int, 0, len(l.cfg.Sortable))
	for _, c := range l.cfg.Sortable {
		if c >= 0 && c < len(l.cfg.Headers) && !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	slices.Sort(cols)
	return cols
}

// State returns a copy of the view state.
func (l *List[T]) State() ViewState {
	return l.state
}

// Restore replaces the view state, fixing any out of range values.
func (l *List[T]) Restore(s ViewState) {
	l.state = l.normalize(s)
	l.changed()
}

// SetRows replaces the row set and clamps the current page.
func (l *List[T]) SetRows(rows []T) {
	l.rows = rows
	l.changed()
}

// Len returns the number of rows before filtering.
func (l *List[T]) Len() int {
	return len(l.rows)
}

// SetFilterText updates the search text and pulls the current page back
// when the filtered set got shorter.
func (l *List[T]) SetFilterText(text string) {
	l.state.FilterText = text
	l.changed()
}

// SetItemsPerPage changes the page size. The current page is pulled back
// when it lies past the new last page.
func (l *List[T]) SetItemsPerPage(n int) error {
	if !slices.Contains(PageSizes, n) {
		return fmt.Errorf("%w: %d", ErrPageSize, n)
	}
	l.state.ItemsPerPage = n
	l.changed()
	return nil
}

// StepItemsPerPage moves to the next (delta > 0) or previous page size.
func (l *List[T]) StepItemsPerPage(delta int) {
	idx := slices.Index(PageSizes, l.state.ItemsPerPage)
	if idx < 0 {
		idx = slices.Index(PageSizes, DefaultItemsPerPage)
	}
	switch {
	case delta > 0 && idx < len(PageSizes)-1:
		idx++
	case delta < 0 && idx > 0:
		idx--
	default:
		return
	}
	_ = l.SetItemsPerPage(PageSizes[idx])
}

// ToggleSort makes column the sort column. Toggling the active column flips
// the direction, any other column starts ascending. Columns that are not
// sortable are ignored and ToggleSort returns false.
func (l *List[T]) ToggleSort(column int) bool {
	if !l.IsSortable(column) {
		return false
	}
	if l.state.SortColumnIndex == column {
		l.state.SortAscending = !l.state.SortAscending
	} else {
		l.state.SortColumnIndex = column
		l.state.SortAscending = true
	}
	l.changed()
	return true
}

// CycleSortColumn moves the sort to the next sortable column, wrapping
// around. It returns false when no column is sortable.
func (l *List[T]) CycleSortColumn() bool {
	cols := l.SortableColumns()
	if len(cols) == 0 {
		return false
	}
	next := cols[0]
	for _, c := range cols {
		if c > l.state.SortColumnIndex {
			next = c
			break
		}
	}
	if next == l.state.SortColumnIndex {
		return false
	}
	return l.ToggleSort(next)
}

// GoToPage jumps to page, clamped into the valid range.
func (l *List[T]) GoToPage(page int) {
	l.state.CurrentPage = page
	l.changed()
}

// FirstPage jumps to page 1.
func (l *List[T]) FirstPage() { l.GoToPage(1) }

// PrevPage moves one page back.
func (l *List[T]) PrevPage() { l.GoToPage(l.state.CurrentPage - 1) }

// NextPage moves one page forward.
func (l *List[T]) NextPage() { l.GoToPage(l.state.CurrentPage + 1) }

// LastPage jumps to the last page.
func (l *List[T]) LastPage() { l.GoToPage(LastPage(len(l.Processed()), l.state.ItemsPerPage)) }

// Processed returns the rows after filtering and sorting.
func (l *List[T]) Processed() []T {
	out := make([]T, 0, len(l.rows))
	if l.cfg.Filter == nil {
		out = append(out, l.rows...)
	} else {
		for _, row := range l.rows {
			if l.cfg.Filter(row, l.state.FilterText) {
				out = append(out, row)
			}
		}
	}
	if l.cfg.Compare != nil {
		col, asc := l.state.SortColumnIndex, l.state.SortAscending
		sort.SliceStable(out, func(i, j int) bool {
			return l.cfg.Compare(out[i], out[j], col, asc) < 0
		})
	}
	return out
}

// Page is one rendered page of a list. FromItem and ToItem are 1-based and
// both zero for an empty list.
type Page[T any] struct {
	Rows        []T
	FirstIndex  int
	FromItem    int
	ToItem      int
	Total       int
	CurrentPage int
	LastPage    int
}

// HasPrev reports whether First and Prev are enabled.
func (p Page[T]) HasPrev() bool { return p.CurrentPage > 1 }

// HasNext reports whether Next and Last are enabled.
func (p Page[T]) HasNext() bool { return p.CurrentPage < p.LastPage }

// ItemsLabel is the "Items X - Y of Z" status text.
func (p Page[T]) ItemsLabel() string {
	return fmt.Sprintf("Items %d - %d of %d", p.FromItem, p.ToItem, p.Total)
}

// PageLabel is the "Page P of L" status text.
func (p Page[T]) PageLabel() string {
	return fmt.Sprintf("Page %d of %d", p.CurrentPage, p.LastPage)
}

// Page returns the current page.
func (l *List[T]) Page() Page[T] {
	rows := l.Processed()
	total := len(rows)
	perPage := l.state.ItemsPerPage
	last := LastPage(total, perPage)
	current := clampPage(l.state.CurrentPage, last)

	first := (current - 1) * perPage
	end := min(total, first+perPage)
	p := Page[T]{
		FirstIndex:  first,
		Total:       total,
		CurrentPage: current,
		LastPage:    last,
	}
	if total > 0 {
		p.Rows = rows[first:end]
		p.FromItem = first + 1
		p.ToItem = end
	}
	return p
}

// LastPage returns max(1, ceil(count/perPage)).
func LastPage(count, perPage int) int {
	if perPage <= 0 || count <= 0 {
		return 1
	}
	return (count + perPage - 1) / perPage
}

func (l *List[T]) changed() {
	l.clamp()
	if l.cfg.State.Save != nil {
		l.cfg.State.Save(l.state)
	}
}

func (l *List[T]) clamp() {
	last := LastPage(len(l.Processed()), l.state.ItemsPerPage)
	l.state.CurrentPage = clampPage(l.state.CurrentPage, last)
}

func (l *List[T]) normalize(s ViewState) ViewState {
	if !slices.Contains(PageSizes, s.ItemsPerPage) {
		s.ItemsPerPage = DefaultItemsPerPage
	}
	if s.CurrentPage < 1 {
		s.CurrentPage = 1
	}
	if s.SortColumnIndex < 0 || s.SortColumnIndex >= max(1, len(l.cfg.Headers)) {
		s.SortColumnIndex = 0
	}
	return s
}

func clampPage(page, last int) int {
	if page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	return page
}
