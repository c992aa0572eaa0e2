package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/submatch/internal/matching"
	"github.com/five82/submatch/internal/nav"
	"github.com/five82/submatch/internal/prefs"
	"github.com/five82/submatch/internal/state"
	"github.com/five82/submatch/internal/tabs"
)

// Actions are the server calls the console can trigger.
type Actions interface {
	AddPin(ctx context.Context, systemID, subscriptionID int64) ([]matching.PinnedMatch, error)
	DeletePin(ctx context.Context, pinID int64) ([]matching.PinnedMatch, error)
	ScheduleMatcherRun(ctx context.Context) error
}

// PollControl lets actions supersede outstanding polls.
type PollControl interface {
	PinsChanged(pins []matching.PinnedMatch)
	MatcherRunScheduled()
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Actions   Actions
	Poller    PollControl
	PollTick  time.Duration
	Prefs     prefs.Prefs
	PrefsPath string
	StartTab  string
	ServerURL string
	Logger    zerolog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	actions   Actions
	poller    PollControl
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration
	serverURL string
	logger    zerolog.Logger

	// UI state
	theme  Theme
	keys   keyMap
	width  int
	height int
	ready  bool

	// Data state
	snapshot state.Snapshot

	// Tabs
	history *nav.History
	panes   []pane
	states  *tabStates

	// Overlays
	showHelp bool
	modal    Modal

	// Actions
	notice         string
	noticeIsError  bool
	scheduling     bool
	runScheduledAt time.Time
	pinBusy        bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger.With().Str("component", "ui").Logger()

	history, err := nav.NewHistory(tabs.Anchors, opts.StartTab)
	if err != nil {
		logger.Warn().Err(err).Str("anchor", opts.StartTab).Msg("unknown start tab, showing first tab")
	}

	theme := GetTheme(opts.Prefs.Theme)
	states := newTabStates(opts.Prefs)

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		actions:   opts.Actions,
		poller:    opts.Poller,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		serverURL: opts.ServerURL,
		logger:    logger,
		theme:     theme,
		keys:      DefaultKeyMap(),
		history:   history,
		states:    states,
		panes:     newPanes(states, theme.ListStyles()),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		for _, p := range m.panes {
			p.SetWidth(m.width)
		}
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		cmds = append(cmds, tickCmd(m.pollTick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case pinFormSubmitMsg:
		m.pinBusy = true
		m.setNotice("Adding pin…", false)
		return m, addPinCmd(m.ctx, m.actions, m.poller, msg.systemID, msg.subscriptionID)

	case pinsChangedMsg:
		m.pinBusy = false
		if msg.err != nil {
			m.logger.Warn().Err(msg.err).Str("action", msg.action).Msg("pin change failed")
			m.setNotice(fmt.Sprintf("%s failed: %v", msg.action, msg.err), true)
			return m, nil
		}
		m.setNotice(msg.action+" done", false)
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil

	case matcherScheduledMsg:
		m.scheduling = false
		if msg.err != nil {
			m.logger.Warn().Err(msg.err).Msg("schedule matcher run failed")
			m.setNotice(fmt.Sprintf("Scheduling matcher run failed: %v", msg.err), true)
			return m, nil
		}
		m.runScheduledAt = msg.at
		m.setNotice("Matcher run scheduled", false)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = modal
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	// A focused filter input gets every other key.
	if m.tabsVisible() && m.activePane().Searching() {
		return m, m.activePane().Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		for _, p := range m.panes {
			p.SetStyles(m.theme.ListStyles())
		}
		m.persistPrefs()
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		m.selectTab(m.activeIndex() + 1)
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.selectTab(m.activeIndex() - 1)
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.history.Back()
		return m, nil

	case key.Matches(msg, m.keys.Forward):
		m.history.Forward()
		return m, nil

	case key.Matches(msg, m.keys.ScheduleRun):
		if !m.canScheduleRun() {
			return m, nil
		}
		m.scheduling = true
		m.setNotice("Scheduling matcher run…", false)
		return m, scheduleMatcherCmd(m.ctx, m.actions, m.poller)

	case key.Matches(msg, m.keys.AddPin):
		if !m.tabsVisible() || m.pinBusy {
			return m, nil
		}
		m.modal = newPinForm()
		return m, nil

	case key.Matches(msg, m.keys.DeletePin):
		return m.deleteSelectedPin()
	}

	for i, b := range m.keys.tabKeys() {
		if key.Matches(msg, b) {
			m.selectTab(i)
			return m, nil
		}
	}

	if m.tabsVisible() {
		return m, m.activePane().Update(msg)
	}
	return m, nil
}

func (m Model) deleteSelectedPin() (tea.Model, tea.Cmd) {
	if !m.tabsVisible() || m.activeAnchor() != tabs.Pins || m.pinBusy {
		return m, nil
	}
	pins, ok := m.panes[m.activeIndex()].(*listPane[tabs.PinRow])
	if !ok {
		return m, nil
	}
	row, ok := pins.model.Selected()
	if !ok {
		return m, nil
	}
	m.pinBusy = true
	m.setNotice(fmt.Sprintf("Deleting pin for %s…", row.System), false)
	return m, deletePinCmd(m.ctx, m.actions, m.poller, row.ID)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.persistPrefs()
	return m, tea.Quit
}

// selectTab pushes the anchor of tab idx, wrapping around.
func (m *Model) selectTab(idx int) {
	n := len(tabs.Anchors)
	idx = ((idx % n) + n) % n
	if err := m.history.Push(tabs.Anchors[idx]); err != nil {
		m.logger.Debug().Err(err).Msg("tab push rejected")
	}
}

func (m Model) activeIndex() int {
	return max(m.history.Index(), 0)
}

func (m Model) activeAnchor() string {
	return tabs.Anchors[m.activeIndex()]
}

func (m Model) activePane() pane {
	return m.panes[m.activeIndex()]
}

// tabsVisible reports whether the tab container is shown at all.
func (m Model) tabsVisible() bool {
	return m.snapshot.Data != nil && m.snapshot.Data.MatcherDataAvailable
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	if snap.Data == nil {
		return
	}
	for _, p := range m.panes {
		p.SetData(*snap.Data)
	}
	if !m.runScheduledAt.IsZero() {
		if end := snap.Data.ParsedLatestEnd(); !end.IsZero() && !end.Before(m.runScheduledAt) {
			m.runScheduledAt = time.Time{}
		}
	}
}

func (m *Model) setNotice(text string, isError bool) {
	m.notice = text
	m.noticeIsError = isError
}

func (m Model) persistPrefs() {
	if m.prefsPath == "" {
		return
	}
	p := m.prefs
	p.Theme = m.theme.Name
	p.LastTab = m.history.Current()
	for _, anchor := range tabs.Anchors {
		if size := m.states.pageSize(anchor); size > 0 {
			p.SetPageSize(anchor, size)
		}
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn().Err(err).Str("path", m.prefsPath).Msg("save prefs failed")
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n\n")

	b.WriteString(m.renderContent())
	b.WriteString("\n\n")

	if m.snapshot.Data != nil {
		b.WriteString(m.renderMatcherPanel())
	}
	return b.String()
}

// renderContent renders the tab container or the reason it is hidden.
func (m Model) renderContent() string {
	styles := m.theme.Styles()
	switch {
	case m.snapshot.Data == nil && m.snapshot.LastError != nil:
		return styles.DangerText.Render("Unable to load subscription matching data. Retrying…")
	case m.snapshot.Data == nil:
		return styles.MutedText.Render("Loading subscription matching data…")
	case !m.snapshot.Data.MatcherDataAvailable:
		return styles.WarningText.Render("No matcher data available yet. Press r to schedule a matcher run.")
	}
	return m.renderTabBar() + "\n\n" + m.activePane().View()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type pinsChangedMsg struct {
	action string
	pins   []matching.PinnedMatch
	err    error
}

type matcherScheduledMsg struct {
	at  time.Time
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

var errNoActions = errors.New("server actions unavailable")

func addPinCmd(ctx context.Context, actions Actions, poller PollControl, systemID, subscriptionID int64) tea.Cmd {
	return func() tea.Msg {
		if actions == nil {
			return pinsChangedMsg{action: "Add pin", err: errNoActions}
		}
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		pins, err := actions.AddPin(ctx, systemID, subscriptionID)
		if err == nil && poller != nil {
			poller.PinsChanged(pins)
		}
		return pinsChangedMsg{action: "Add pin", pins: pins, err: err}
	}
}

func deletePinCmd(ctx context.Context, actions Actions, poller PollControl, pinID int64) tea.Cmd {
	return func() tea.Msg {
		if actions == nil {
			return pinsChangedMsg{action: "Delete pin", err: errNoActions}
		}
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		pins, err := actions.DeletePin(ctx, pinID)
		if err == nil && poller != nil {
			poller.PinsChanged(pins)
		}
		return pinsChangedMsg{action: "Delete pin", pins: pins, err: err}
	}
}

func scheduleMatcherCmd(ctx context.Context, actions Actions, poller PollControl) tea.Cmd {
	return func() tea.Msg {
		if actions == nil {
			return matcherScheduledMsg{err: errNoActions}
		}
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		if err := actions.ScheduleMatcherRun(ctx); err != nil {
			return matcherScheduledMsg{err: err}
		}
		if poller != nil {
			poller.MatcherRunScheduled()
		}
		return matcherScheduledMsg{at: time.Now()}
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	opts.Context = ctx
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
