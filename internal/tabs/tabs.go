// Package tabs shapes matching data into the four console tables.
package tabs

import (
	"cmp"
	"errors"
	"fmt"
	"strings"

	"github.com/five82/submatch/internal/listview"
	"github.com/five82/submatch/internal/matching"
	"github.com/five82/submatch/internal/nav"
)

// Tab anchors, in display order.
const (
	Subscriptions     = "#subscriptions"
	UnmatchedProducts = "#unmatched-products"
	Pins              = "#pins"
	Messages          = "#messages"
)

// Anchors lists every tab anchor in display order.
var Anchors = []string{Subscriptions, UnmatchedProducts, Pins, Messages}

// ErrUnknownColumn is returned when a column name matches no header.
var ErrUnknownColumn = errors.New("unknown column")

var labels = map[string]string{
	Subscriptions:     "Subscriptions",
	UnmatchedProducts: "Unmatched Products",
	Pins:              "Pins",
	Messages:          "Messages",
}

// Label returns the display label for an anchor.
func Label(anchor string) string {
	if l, ok := labels[nav.Normalize(anchor)]; ok {
		return l
	}
	return anchor
}

// NeedsAttention reports whether a tab label should carry a warning marker.
func NeedsAttention(anchor string, data matching.Data) bool {
	switch nav.Normalize(anchor) {
	case Pins:
		return data.HasUnsatisfiedPins()
	case Messages:
		return len(data.Messages) > 0
	}
	return false
}

// Spec bundles everything needed to show one table.
type Spec[T any] struct {
	Config listview.Config[T]
	Cells  listview.CellsFunc[T]
	Rows   func(data matching.Data) []T
}

// Table is one rendered page of a tab, as plain strings.
type Table struct {
	Anchor      string
	Headers     []string
	Cells       [][]string
	ItemsLabel  string
	PageLabel   string
	CurrentPage int
	LastPage    int
	Total       int
}

// Render builds the requested page of a tab.
func Render(anchor string, data matching.Data, state listview.ViewState) (Table, error) {
	switch nav.Normalize(anchor) {
	case Subscriptions:
		return renderSpec(Subscriptions, SubscriptionSpec(), data, state), nil
	case UnmatchedProducts:
		return renderSpec(UnmatchedProducts, ProductSpec(), data, state), nil
	case Pins:
		return renderSpec(Pins, PinSpec(), data, state), nil
	case Messages:
		return renderSpec(Messages, MessageSpec(), data, state), nil
	}
	return Table{}, fmt.Errorf("%w: %s", nav.ErrUnknownAnchor, anchor)
}

// Headers returns the column headers of a tab.
func Headers(anchor string) ([]string, error) {
	switch nav.Normalize(anchor) {
	case Subscriptions:
		return SubscriptionSpec().Config.Headers, nil
	case UnmatchedProducts:
		return ProductSpec().Config.Headers, nil
	case Pins:
		return PinSpec().Config.Headers, nil
	case Messages:
		return MessageSpec().Config.Headers, nil
	}
	return nil, fmt.Errorf("%w: %s", nav.ErrUnknownAnchor, anchor)
}

// ColumnIndex resolves a header name, case-insensitively and ignoring
// spaces, dashes and underscores, to its index.
func ColumnIndex(anchor, name string) (int, error) {
	headers, err := Headers(anchor)
	if err != nil {
		return 0, err
	}
	want := squash(name)
	for i, h := range headers {
		if squash(h) == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w %q for %s", ErrUnknownColumn, name, anchor)
}

func renderSpec[T any](anchor string, spec Spec[T], data matching.Data, state listview.ViewState) Table {
	cfg := spec.Config
	cfg.State = listview.StateAccessor{
		Load: func() (listview.ViewState, bool) { return state, true },
	}
	list := listview.New(cfg, spec.Rows(data))
	page := list.Page()

	cells := make([][]string, len(page.Rows))
	for i, row := range page.Rows {
		cells[i] = spec.Cells(row)
	}
	return Table{
		Anchor:      anchor,
		Headers:     list.Headers(),
		Cells:       cells,
		ItemsLabel:  page.ItemsLabel(),
		PageLabel:   page.PageLabel(),
		CurrentPage: page.CurrentPage,
		LastPage:    page.LastPage,
		Total:       page.Total,
	}
}

func squash(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(value)))
}

func directed(result int, ascending bool) int {
	if ascending {
		return result
	}
	return -result
}

func compareText(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}
