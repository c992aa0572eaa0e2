package tabs

import (
	"cmp"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/five82/submatch/internal/listview"
	"github.com/five82/submatch/internal/matching"
)

// SubscriptionSpec lists every subscription.
func SubscriptionSpec() Spec[matching.Subscription] {
	return Spec[matching.Subscription]{
		Config: listview.Config[matching.Subscription]{
			Headers:     []string{"Part number", "Description", "Policy", "Matched", "Start date", "End date"},
			Placeholder: "Filter by description",
			Filter: func(s matching.Subscription, text string) bool {
				return containsFold(s.Description, text) || containsFold(s.PartNumber, text)
			},
			Compare:  compareSubscriptions,
			Sortable: []int{0, 1, 2, 3, 4, 5},
		},
		Cells: func(s matching.Subscription) []string {
			return []string{
				s.PartNumber,
				s.Description,
				policyLabel(s.Policy),
				fmt.Sprintf("%d/%d", s.MatchedQuantity, s.TotalQuantity),
				shortDate(s.StartDate),
				shortDate(s.EndDate),
			}
		},
		Rows: func(d matching.Data) []matching.Subscription {
			return d.SubscriptionList()
		},
	}
}

func compareSubscriptions(a, b matching.Subscription, column int, ascending bool) int {
	var result int
	switch column {
	case 0:
		result = compareText(a.PartNumber, b.PartNumber)
	case 1:
		result = compareText(a.Description, b.Description)
	case 2:
		result = compareText(a.Policy, b.Policy)
	case 3:
		result = cmp.Compare(a.MatchedQuantity*max(b.TotalQuantity, 1), b.MatchedQuantity*max(a.TotalQuantity, 1))
	case 4:
		result = cmp.Compare(a.StartDate, b.StartDate)
	case 5:
		result = cmp.Compare(a.EndDate, b.EndDate)
	}
	return directed(result, ascending)
}

// ProductRow is an unmatched product with the names of its affected systems.
type ProductRow struct {
	ID      int64
	Name    string
	Systems []string
}

// ProductSpec lists unmatched products.
func ProductSpec() Spec[ProductRow] {
	return Spec[ProductRow]{
		Config: listview.Config[ProductRow]{
			Headers:     []string{"Product name", "Unmatched systems"},
			Placeholder: "Filter by product name",
			Filter: func(p ProductRow, text string) bool {
				return containsFold(p.Name, text)
			},
			Compare: func(a, b ProductRow, column int, ascending bool) int {
				if column == 1 {
					return directed(cmp.Compare(len(a.Systems), len(b.Systems)), ascending)
				}
				return directed(compareText(a.Name, b.Name), ascending)
			},
			Sortable: []int{0, 1},
		},
		Cells: func(p ProductRow) []string {
			return []string{p.Name, systemsSummary(p.Systems)}
		},
		Rows: ProductRows,
	}
}

// ProductRows resolves unmatched product ids against products and systems.
func ProductRows(d matching.Data) []ProductRow {
	products := d.UnmatchedProducts()
	rows := make([]ProductRow, 0, len(products))
	for _, p := range products {
		names := make([]string, 0, len(p.UnmatchedSystemIDs))
		for _, id := range p.UnmatchedSystemIDs {
			names = append(names, d.SystemName(id))
		}
		sort.Strings(names)
		rows = append(rows, ProductRow{ID: p.ID, Name: p.ProductName, Systems: names})
	}
	return rows
}

// PinRow is a pinned match with resolved display names.
type PinRow struct {
	ID             int64
	SystemID       int64
	SubscriptionID int64
	System         string
	Subscription   string
	Status         string
}

// PinSpec lists pinned matches.
func PinSpec() Spec[PinRow] {
	return Spec[PinRow]{
		Config: listview.Config[PinRow]{
			Headers:     []string{"System", "Subscription", "Status"},
			Placeholder: "Filter by system or subscription",
			Filter: func(p PinRow, text string) bool {
				return containsFold(p.System, text) || containsFold(p.Subscription, text)
			},
			Compare: func(a, b PinRow, column int, ascending bool) int {
				var result int
				switch column {
				case 0:
					result = compareText(a.System, b.System)
				case 1:
					result = compareText(a.Subscription, b.Subscription)
				case 2:
					result = compareText(a.Status, b.Status)
				}
				return directed(result, ascending)
			},
			Sortable: []int{0, 1, 2},
		},
		Cells: func(p PinRow) []string {
			return []string{p.System, p.Subscription, PinStatusLabel(p.Status)}
		},
		Rows: PinRows,
	}
}

// PinRows resolves pinned matches against systems and subscriptions.
func PinRows(d matching.Data) []PinRow {
	rows := make([]PinRow, 0, len(d.PinnedMatches))
	for _, p := range d.PinnedMatches {
		rows = append(rows, PinRow{
			ID:             p.ID,
			SystemID:       p.SystemID,
			SubscriptionID: p.SubscriptionID,
			System:         d.SystemName(p.SystemID),
			Subscription:   d.SubscriptionName(p.SubscriptionID),
			Status:         strings.ToLower(strings.TrimSpace(p.Status)),
		})
	}
	return rows
}

// PinStatusLabel renders a pin status for display.
func PinStatusLabel(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case matching.PinStatusSatisfied:
		return "Satisfied"
	case matching.PinStatusUnsatisfied:
		return "Unsatisfied"
	case matching.PinStatusPending, "":
		return "Pending next run"
	default:
		return status
	}
}

// MessageRow is a matcher message translated for display.
type MessageRow struct {
	Type string
	Text string
	Info string
}

// MessageSpec lists matcher messages.
func MessageSpec() Spec[MessageRow] {
	return Spec[MessageRow]{
		Config: listview.Config[MessageRow]{
			Headers:     []string{"Message", "Additional information"},
			Placeholder: "Filter messages",
			Filter: func(m MessageRow, text string) bool {
				return containsFold(m.Text, text) || containsFold(m.Info, text)
			},
			Compare: func(a, b MessageRow, column int, ascending bool) int {
				if column == 1 {
					return directed(compareText(a.Info, b.Info), ascending)
				}
				return directed(compareText(a.Text, b.Text), ascending)
			},
			Sortable: []int{0, 1},
		},
		Cells: func(m MessageRow) []string {
			return []string{m.Text, m.Info}
		},
		Rows: MessageRows,
	}
}

// MessageRows translates matcher messages.
func MessageRows(d matching.Data) []MessageRow {
	rows := make([]MessageRow, 0, len(d.Messages))
	for _, msg := range d.Messages {
		rows = append(rows, describeMessage(d, msg))
	}
	return rows
}

func describeMessage(d matching.Data, msg matching.Message) MessageRow {
	row := MessageRow{Type: msg.Type}
	switch msg.Type {
	case "unknown_part_number":
		row.Text = "Unsupported part number detected"
		row.Info = msg.Data["part_number"]
	case "physical_guest":
		row.Text = "Physical system is reported as virtual guest, please check hardware data"
		row.Info = systemFromMessage(d, msg)
	case "guest_with_unknown_host":
		row.Text = "Virtual guest has unknown host, assuming it is a physical system"
		row.Info = systemFromMessage(d, msg)
	case "unknown_cpu_count":
		row.Text = "System has an unknown number of sockets, assuming 16"
		row.Info = systemFromMessage(d, msg)
	default:
		row.Text = msg.Type
		row.Info = flattenData(msg.Data)
	}
	return row
}

func systemFromMessage(d matching.Data, msg matching.Message) string {
	raw := strings.TrimSpace(msg.Data["id"])
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return raw
	}
	return d.SystemName(id)
}

func flattenData(data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+data[k])
	}
	return strings.Join(parts, ", ")
}

func policyLabel(policy string) string {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "physical_only":
		return "Physical deployment only"
	case "unlimited_virtualization":
		return "Unlimited virtual machines"
	case "one_two":
		return "1-2 sockets or 1-2 virtual machines"
	case "virtual_only":
		return "Virtual deployment only"
	default:
		return policy
	}
}

func systemsSummary(names []string) string {
	if len(names) == 0 {
		return "0"
	}
	return fmt.Sprintf("%d: %s", len(names), strings.Join(names, ", "))
}

func shortDate(value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return value
}
