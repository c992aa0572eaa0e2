package matching

import (
	"sort"
	"strings"
	"time"
)

// Pin status values reported by the matcher.
const (
	PinStatusPending     = "pending"
	PinStatusSatisfied   = "satisfied"
	PinStatusUnsatisfied = "unsatisfied"
)

const serverTimestampLayout = "2006-01-02 15:04:05"

// Data mirrors the payload returned by the matching data endpoint.
type Data struct {
	Subscriptions        map[int64]Subscription `json:"subscriptions" yaml:"subscriptions"`
	Products             map[int64]Product      `json:"products" yaml:"products"`
	Systems              map[int64]System       `json:"systems" yaml:"systems"`
	UnmatchedProductIDs  []int64                `json:"unmatchedProductIds" yaml:"unmatchedProductIds"`
	PinnedMatches        []PinnedMatch          `json:"pinnedMatches" yaml:"pinnedMatches"`
	Messages             []Message              `json:"messages" yaml:"messages"`
	MatcherDataAvailable bool                   `json:"matcherDataAvailable" yaml:"matcherDataAvailable"`
	LatestStart          *string                `json:"latestStart" yaml:"latestStart"`
	LatestEnd            *string                `json:"latestEnd" yaml:"latestEnd"`
}

// Subscription is a purchased entitlement known to the matcher.
type Subscription struct {
	ID              int64  `json:"id" yaml:"id"`
	PartNumber      string `json:"partNumber" yaml:"partNumber"`
	Description     string `json:"description" yaml:"description"`
	Policy          string `json:"policy" yaml:"policy"`
	TotalQuantity   int    `json:"totalQuantity" yaml:"totalQuantity"`
	MatchedQuantity int    `json:"matchedQuantity" yaml:"matchedQuantity"`
	StartDate       string `json:"startDate" yaml:"startDate"`
	EndDate         string `json:"endDate" yaml:"endDate"`
}

// Product is an installed product that may need a subscription.
type Product struct {
	ID                 int64   `json:"id" yaml:"id"`
	ProductName        string  `json:"productName" yaml:"productName"`
	UnmatchedSystemIDs []int64 `json:"unmatchedSystemIds" yaml:"unmatchedSystemIds"`
}

// System is a registered system taking part in matching.
type System struct {
	ID         int64   `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	CPUCount   *int    `json:"cpuCount" yaml:"cpuCount"`
	ProductIDs []int64 `json:"productIds" yaml:"productIds"`
}

// PinnedMatch is a user requested association between a system and a subscription.
type PinnedMatch struct {
	ID             int64  `json:"id" yaml:"id"`
	SystemID       int64  `json:"systemId" yaml:"systemId"`
	SubscriptionID int64  `json:"subscriptionId" yaml:"subscriptionId"`
	Status         string `json:"status" yaml:"status"`
}

// Unsatisfied reports whether the matcher could not honor the pin.
func (p PinnedMatch) Unsatisfied() bool {
	return strings.EqualFold(strings.TrimSpace(p.Status), PinStatusUnsatisfied)
}

// Message is a matcher diagnostic.
type Message struct {
	Type string            `json:"type" yaml:"type"`
	Data map[string]string `json:"data" yaml:"data"`
}

// HasUnsatisfiedPins reports whether any pin could not be honored.
func (d Data) HasUnsatisfiedPins() bool {
	for _, p := range d.PinnedMatches {
		if p.Unsatisfied() {
			return true
		}
	}
	return false
}

// SubscriptionList returns subscriptions ordered by id.
func (d Data) SubscriptionList() []Subscription {
	out := make([]Subscription, 0, len(d.Subscriptions))
	for _, s := range d.Subscriptions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UnmatchedProducts returns the products listed in UnmatchedProductIDs, in
// that order. Ids without a product entry are skipped.
func (d Data) UnmatchedProducts() []Product {
	out := make([]Product, 0, len(d.UnmatchedProductIDs))
	for _, id := range d.UnmatchedProductIDs {
		if p, ok := d.Products[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// SystemName returns a display name for a system id.
func (d Data) SystemName(id int64) string {
	if s, ok := d.Systems[id]; ok && strings.TrimSpace(s.Name) != "" {
		return s.Name
	}
	return "System " + formatID(id)
}

// SubscriptionName returns a display name for a subscription id.
func (d Data) SubscriptionName(id int64) string {
	if s, ok := d.Subscriptions[id]; ok {
		if desc := strings.TrimSpace(s.Description); desc != "" {
			return desc
		}
		if s.PartNumber != "" {
			return s.PartNumber
		}
	}
	return "Subscription " + formatID(id)
}

// Clone returns a deep copy so callers can hand out snapshots without sharing
// backing arrays or maps.
func (d Data) Clone() Data {
	out := d
	if d.Subscriptions != nil {
		out.Subscriptions = make(map[int64]Subscription, len(d.Subscriptions))
		for k, v := range d.Subscriptions {
			out.Subscriptions[k] = v
		}
	}
	if d.Products != nil {
		out.Products = make(map[int64]Product, len(d.Products))
		for k, v := range d.Products {
			v.UnmatchedSystemIDs = append([]int64(nil), v.UnmatchedSystemIDs...)
			out.Products[k] = v
		}
	}
	if d.Systems != nil {
		out.Systems = make(map[int64]System, len(d.Systems))
		for k, v := range d.Systems {
			v.ProductIDs = append([]int64(nil), v.ProductIDs...)
			out.Systems[k] = v
		}
	}
	out.UnmatchedProductIDs = append([]int64(nil), d.UnmatchedProductIDs...)
	out.PinnedMatches = ClonePins(d.PinnedMatches)
	if d.Messages != nil {
		out.Messages = make([]Message, len(d.Messages))
		for i, m := range d.Messages {
			dup := Message{Type: m.Type}
			if m.Data != nil {
				dup.Data = make(map[string]string, len(m.Data))
				for k, v := range m.Data {
					dup.Data[k] = v
				}
			}
			out.Messages[i] = dup
		}
	}
	return out
}

// ClonePins copies a pin list.
func ClonePins(pins []PinnedMatch) []PinnedMatch {
	if pins == nil {
		return nil
	}
	dup := make([]PinnedMatch, len(pins))
	copy(dup, pins)
	return dup
}

// ParsedLatestStart returns the start of the latest matcher run, or zero.
func (d Data) ParsedLatestStart() time.Time {
	if d.LatestStart == nil {
		return time.Time{}
	}
	return parseTime(*d.LatestStart)
}

// ParsedLatestEnd returns the end of the latest matcher run, or zero.
func (d Data) ParsedLatestEnd() time.Time {
	if d.LatestEnd == nil {
		return time.Time{}
	}
	return parseTime(*d.LatestEnd)
}

// MatcherRunning reports whether a run started but has not finished yet.
func (d Data) MatcherRunning() bool {
	start := d.ParsedLatestStart()
	if start.IsZero() {
		return false
	}
	end := d.ParsedLatestEnd()
	return end.IsZero() || end.Before(start)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(serverTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
