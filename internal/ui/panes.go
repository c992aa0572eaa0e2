package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/submatch/internal/listview"
	"github.com/five82/submatch/internal/matching"
	"github.com/five82/submatch/internal/prefs"
	"github.com/five82/submatch/internal/tabs"
)

// pane is one tab's table, independent of its row type.
type pane interface {
	Update(msg tea.KeyMsg) tea.Cmd
	View() string
	SetData(data matching.Data)
	SetWidth(width int)
	SetStyles(styles listview.Styles)
	Searching() bool
}

type listPane[T any] struct {
	model listview.Model[T]
	rows  func(matching.Data) []T
}

func newListPane[T any](spec tabs.Spec[T], state listview.StateAccessor, styles listview.Styles) *listPane[T] {
	cfg := spec.Config
	cfg.State = state
	return &listPane[T]{
		model: listview.NewModel(cfg, nil, spec.Cells, styles),
		rows:  spec.Rows,
	}
}

func (p *listPane[T]) Update(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	p.model, cmd = p.model.Update(msg)
	return cmd
}

func (p *listPane[T]) View() string {
	return p.model.View()
}

func (p *listPane[T]) SetData(data matching.Data) {
	p.model.SetRows(p.rows(data))
}

func (p *listPane[T]) SetWidth(width int) {
	p.model.SetWidth(width)
}

func (p *listPane[T]) SetStyles(styles listview.Styles) {
	p.model.SetStyles(styles)
}

func (p *listPane[T]) Searching() bool {
	return p.model.Searching()
}

// tabStates keeps one view state per tab so a table comes back the way the
// operator left it when its rows are rebuilt.
type tabStates struct {
	views map[string]listview.ViewState
}

func newTabStates(p prefs.Prefs) *tabStates {
	s := &tabStates{views: make(map[string]listview.ViewState, len(tabs.Anchors))}
	for _, anchor := range tabs.Anchors {
		if size := p.PageSize(anchor); size > 0 {
			v := listview.DefaultState()
			v.ItemsPerPage = size
			s.views[anchor] = v
		}
	}
	return s
}

func (s *tabStates) accessor(anchor string) listview.StateAccessor {
	return listview.StateAccessor{
		Load: func() (listview.ViewState, bool) {
			v, ok := s.views[anchor]
			return v, ok
		},
		Save: func(v listview.ViewState) {
			s.views[anchor] = v
		},
	}
}

func (s *tabStates) pageSize(anchor string) int {
	if v, ok := s.views[anchor]; ok {
		return v.ItemsPerPage
	}
	return 0
}

func newPanes(states *tabStates, styles listview.Styles) []pane {
	return []pane{
		newListPane(tabs.SubscriptionSpec(), states.accessor(tabs.Subscriptions), styles),
		newListPane(tabs.ProductSpec(), states.accessor(tabs.UnmatchedProducts), styles),
		newListPane(tabs.PinSpec(), states.accessor(tabs.Pins), styles),
		newListPane(tabs.MessageSpec(), states.accessor(tabs.Messages), styles),
	}
}
