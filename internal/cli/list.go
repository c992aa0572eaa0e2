package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/five82/submatch/internal/app"
	"github.com/five82/submatch/internal/listview"
	"github.com/five82/submatch/internal/tabs"
)

type listOptions struct {
	page     int
	pageSize int
	filter   string
	sort     string
}

func newListCmd(root *rootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:       "list <tab>",
		Short:     "Print one page of a tab",
		Long:      "Fetch the matching data once and print one page of a tab, filtered, sorted and paginated the same way the console does.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"subscriptions", "unmatched-products", "pins", "messages"},
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := opts.viewState(args[0])
			if err != nil {
				return err
			}

			cfg, logger, closer, err := loadForCommand(cmd, root)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			data, err := app.Snapshot(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			if !data.MatcherDataAvailable {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No matcher data available yet.")
				return nil
			}

			result, err := tabs.Render(args[0], *data, state)
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", listview.DefaultItemsPerPage, "items per page (5, 10, 15, 25, 50, 100, 250 or 500)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "search text")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort column, optionally suffixed with :asc or :desc")
	return cmd
}

// viewState turns the flags into the list state for anchor.
func (o listOptions) viewState(anchor string) (listview.ViewState, error) {
	state := listview.DefaultState()

	if _, err := tabs.Headers(anchor); err != nil {
		return state, fmt.Errorf("%w (want one of %s)", err, strings.Join(tabs.Anchors, ", "))
	}

	if !slices.Contains(listview.PageSizes, o.pageSize) {
		return state, fmt.Errorf("%w: %d", listview.ErrPageSize, o.pageSize)
	}
	state.ItemsPerPage = o.pageSize
	state.CurrentPage = max(o.page, 1)
	state.FilterText = o.filter

	if strings.TrimSpace(o.sort) != "" {
		column, direction, _ := strings.Cut(o.sort, ":")
		idx, err := tabs.ColumnIndex(anchor, column)
		if err != nil {
			return state, err
		}
		state.SortColumnIndex = idx
		switch strings.ToLower(strings.TrimSpace(direction)) {
		case "", "asc":
			state.SortAscending = true
		case "desc":
			state.SortAscending = false
		default:
			return state, fmt.Errorf("sort direction %q: want asc or desc", direction)
		}
	}
	return state, nil
}

func renderTable(w io.Writer, result tabs.Table) {
	_, _ = fmt.Fprintf(w, "%s  %s\n", tabs.Label(result.Anchor), result.ItemsLabel)

	if len(result.Cells) == 0 {
		_, _ = fmt.Fprintln(w, "No items")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(result.Headers))
	for i, h := range result.Headers {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, cells := range result.Cells {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}
	t.Render()

	if result.LastPage > 1 {
		_, _ = fmt.Fprintln(w, result.PageLabel)
	}
}
