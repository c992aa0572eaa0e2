package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/submatch/internal/matching"
	"github.com/five82/submatch/internal/prefs"
	"github.com/five82/submatch/internal/state"
	"github.com/five82/submatch/internal/tabs"
)

type fakeActions struct {
	mu          sync.Mutex
	added       [][2]int64
	deleted     []int64
	scheduled   int
	pins        []matching.PinnedMatch
	scheduleErr error
}

func (f *fakeActions) AddPin(_ context.Context, systemID, subscriptionID int64) ([]matching.PinnedMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, [2]int64{systemID, subscriptionID})
	return f.pins, nil
}

func (f *fakeActions) DeletePin(_ context.Context, pinID int64) ([]matching.PinnedMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, pinID)
	return f.pins, nil
}

func (f *fakeActions) ScheduleMatcherRun(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled++
	return f.scheduleErr
}

type fakePoller struct {
	mu        sync.Mutex
	pins      [][]matching.PinnedMatch
	scheduled int
}

func (f *fakePoller) PinsChanged(pins []matching.PinnedMatch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pins = append(f.pins, pins)
}

func (f *fakePoller) MatcherRunScheduled() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled++
}

func testData() *matching.Data {
	return &matching.Data{
		MatcherDataAvailable: true,
		Subscriptions: map[int64]matching.Subscription{
			1: {ID: 1, PartNumber: "874-007", Description: "SLES", TotalQuantity: 4, MatchedQuantity: 1},
		},
		Systems: map[int64]matching.System{
			10: {ID: 10, Name: "web01"},
		},
		PinnedMatches: []matching.PinnedMatch{
			{ID: 5, SystemID: 10, SubscriptionID: 1, Status: matching.PinStatusUnsatisfied},
		},
	}
}

func newTestModel(t *testing.T, start string, actions Actions, poller PollControl) Model {
	t.Helper()
	m := New(Options{
		Actions:   actions,
		Poller:    poller,
		Prefs:     prefs.Defaults(),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		StartTab:  start,
		Logger:    zerolog.Nop(),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func withData(m Model, data *matching.Data) Model {
	next, _ := m.Update(snapshotMsg(state.Snapshot{Data: data, Phase: state.PhaseReady}))
	return next.(Model)
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func TestStartAnchorSelectsPinsTab(t *testing.T) {
	m := newTestModel(t, "#pins", nil, nil)
	if got := m.activeAnchor(); got != tabs.Pins {
		t.Fatalf("activeAnchor = %q, want %q", got, tabs.Pins)
	}
}

func TestUnknownStartAnchorSelectsFirstTab(t *testing.T) {
	m := newTestModel(t, "#nowhere", nil, nil)
	if got := m.activeAnchor(); got != tabs.Subscriptions {
		t.Fatalf("activeAnchor = %q, want %q", got, tabs.Subscriptions)
	}
}

func TestTabKeysPushHistory(t *testing.T) {
	m := withData(newTestModel(t, "", nil, nil), testData())

	m, _ = press(m, "3")
	if got := m.activeAnchor(); got != tabs.Pins {
		t.Fatalf("after 3: activeAnchor = %q, want %q", got, tabs.Pins)
	}
	m, _ = press(m, "tab")
	if got := m.activeAnchor(); got != tabs.Messages {
		t.Fatalf("after tab: activeAnchor = %q, want %q", got, tabs.Messages)
	}
	m, _ = press(m, "[")
	if got := m.activeAnchor(); got != tabs.Pins {
		t.Fatalf("after back: activeAnchor = %q, want %q", got, tabs.Pins)
	}
	m, _ = press(m, "]")
	if got := m.activeAnchor(); got != tabs.Messages {
		t.Fatalf("after forward: activeAnchor = %q, want %q", got, tabs.Messages)
	}
	m, _ = press(m, "tab")
	if got := m.activeAnchor(); got != tabs.Subscriptions {
		t.Fatalf("tab should wrap: activeAnchor = %q, want %q", got, tabs.Subscriptions)
	}
}

func TestTabsHiddenWithoutMatcherData(t *testing.T) {
	m := newTestModel(t, "", nil, nil)
	if !strings.Contains(m.View(), "Loading subscription matching data") {
		t.Fatalf("expected loading text before the first snapshot")
	}

	data := testData()
	data.MatcherDataAvailable = false
	m = withData(m, data)
	view := m.View()
	if !strings.Contains(view, "No matcher data available") {
		t.Fatalf("expected unavailable text, got:\n%s", view)
	}
	if strings.Contains(view, "Unmatched Products") {
		t.Fatalf("tab bar should be hidden without matcher data")
	}
}

func TestPinsLabelCarriesWarning(t *testing.T) {
	m := withData(newTestModel(t, "", nil, nil), testData())
	bar := m.renderTabBar()
	if !strings.Contains(bar, "Pins "+warningMarker) {
		t.Fatalf("expected warning marker on Pins, got %q", bar)
	}
	if strings.Contains(bar, "Messages "+warningMarker) {
		t.Fatalf("Messages should not carry a marker without messages")
	}
}

func TestDeleteSelectedPinNotifiesPoller(t *testing.T) {
	actions := &fakeActions{pins: []matching.PinnedMatch{}}
	poller := &fakePoller{}
	m := withData(newTestModel(t, "#pins", actions, poller), testData())

	m, cmd := press(m, "x")
	if cmd == nil {
		t.Fatalf("expected a delete command")
	}
	if !m.pinBusy {
		t.Fatalf("expected pinBusy while deleting")
	}
	msg := cmd()
	changed, ok := msg.(pinsChangedMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want pinsChangedMsg", msg)
	}
	if changed.err != nil {
		t.Fatalf("unexpected error: %v", changed.err)
	}
	if len(actions.deleted) != 1 || actions.deleted[0] != 5 {
		t.Fatalf("deleted = %v, want [5]", actions.deleted)
	}
	if len(poller.pins) != 1 {
		t.Fatalf("poller notified %d times, want 1", len(poller.pins))
	}

	next, _ := m.Update(changed)
	if next.(Model).pinBusy {
		t.Fatalf("pinBusy should clear after the response")
	}
}

func TestDeleteIgnoredOutsidePinsTab(t *testing.T) {
	actions := &fakeActions{}
	m := withData(newTestModel(t, "#subscriptions", actions, &fakePoller{}), testData())
	if _, cmd := press(m, "x"); cmd != nil {
		t.Fatalf("expected no command outside the Pins tab")
	}
}

func TestPinFormSubmitsNewPin(t *testing.T) {
	actions := &fakeActions{pins: []matching.PinnedMatch{{ID: 9, SystemID: 12, SubscriptionID: 34}}}
	poller := &fakePoller{}
	m := withData(newTestModel(t, "#pins", actions, poller), testData())

	m, _ = press(m, "a")
	if m.modal == nil {
		t.Fatalf("expected the pin form to open")
	}
	m, cmd := press(m, "12", "enter", "34", "enter")
	if m.modal != nil {
		t.Fatalf("expected the form to close after submit")
	}
	if cmd == nil {
		t.Fatalf("expected a submit command")
	}
	submit, ok := cmd().(pinFormSubmitMsg)
	if !ok {
		t.Fatalf("expected pinFormSubmitMsg")
	}
	if submit.systemID != 12 || submit.subscriptionID != 34 {
		t.Fatalf("submit = %+v, want 12/34", submit)
	}

	next, addCmd := m.Update(submit)
	m = next.(Model)
	if addCmd == nil {
		t.Fatalf("expected an add command")
	}
	if _, ok := addCmd().(pinsChangedMsg); !ok {
		t.Fatalf("add command should report pinsChangedMsg")
	}
	if len(actions.added) != 1 || actions.added[0] != [2]int64{12, 34} {
		t.Fatalf("added = %v, want [[12 34]]", actions.added)
	}
	if len(poller.pins) != 1 || poller.pins[0][0].ID != 9 {
		t.Fatalf("poller pins = %+v, want the server list", poller.pins)
	}
}

func TestPinFormRejectsInvalidIDs(t *testing.T) {
	m := withData(newTestModel(t, "#pins", &fakeActions{}, &fakePoller{}), testData())
	m, _ = press(m, "a", "enter", "enter")
	if m.modal == nil {
		t.Fatalf("form should stay open on invalid input")
	}
	form := m.modal.(*pinForm)
	if form.err == "" {
		t.Fatalf("expected a validation message")
	}
	m, _ = press(m, "esc")
	if m.modal != nil {
		t.Fatalf("esc should close the form")
	}
}

func TestScheduleMatcherRun(t *testing.T) {
	actions := &fakeActions{}
	poller := &fakePoller{}
	m := withData(newTestModel(t, "", actions, poller), testData())

	m, cmd := press(m, "r")
	if cmd == nil || !m.scheduling {
		t.Fatalf("expected scheduling to start")
	}
	if _, again := press(m, "r"); again != nil {
		t.Fatalf("second r while scheduling should be ignored")
	}
	msg := cmd().(matcherScheduledMsg)
	if msg.err != nil {
		t.Fatalf("unexpected error: %v", msg.err)
	}
	if actions.scheduled != 1 || poller.scheduled != 1 {
		t.Fatalf("scheduled = %d, poller = %d; want 1 and 1", actions.scheduled, poller.scheduled)
	}
	next, _ := m.Update(msg)
	m = next.(Model)
	if m.scheduling || m.runScheduledAt.IsZero() {
		t.Fatalf("expected scheduled state after success")
	}
}

func TestScheduleMatcherRunFailureLeavesPollsAlone(t *testing.T) {
	actions := &fakeActions{scheduleErr: errors.New("status 500")}
	poller := &fakePoller{}
	m := withData(newTestModel(t, "", actions, poller), testData())

	m, cmd := press(m, "r")
	next, _ := m.Update(cmd())
	m = next.(Model)
	if poller.scheduled != 0 {
		t.Fatalf("poller should not be notified on failure")
	}
	if !m.noticeIsError {
		t.Fatalf("expected an error notice")
	}
}

func TestSearchInputCapturesKeys(t *testing.T) {
	m := withData(newTestModel(t, "", nil, nil), testData())
	m, _ = press(m, "/", "q")

	subs := m.panes[0].(*listPane[matching.Subscription])
	if got := subs.model.List().State().FilterText; got != "q" {
		t.Fatalf("FilterText = %q, want %q", got, "q")
	}
	m, _ = press(m, "esc")
	if m.activePane().Searching() {
		t.Fatalf("esc should leave the search input")
	}
}

func TestTabStateSurvivesSnapshots(t *testing.T) {
	m := withData(newTestModel(t, "", nil, nil), testData())
	m, _ = press(m, "+")
	m = withData(m, testData())

	if got := m.states.pageSize(tabs.Subscriptions); got != 25 {
		t.Fatalf("page size = %d, want 25 after one step up", got)
	}
}
