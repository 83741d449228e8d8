package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/neilberkman/tickr/internal/core/auth"
	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/remotesync"
	"github.com/neilberkman/tickr/internal/core/store"
	"github.com/neilberkman/tickr/internal/core/timer"
	"github.com/neilberkman/tickr/internal/core/watch"
)

type viewMode int

const (
	mainView viewMode = iota
	editView
	authView
	helpView
)

type focusArea int

const (
	focusActivity focusArea = iota
	focusDescription
	focusTags
	focusHistory
	focusCount
)

const toastDuration = 3 * time.Second

// Options wires the TUI to its collaborators. Only Store is required.
type Options struct {
	Store         *store.Store
	Auth          *auth.Holder
	Syncer        *remotesync.Syncer
	Search        Searcher
	Watcher       *watch.Watcher
	Intent        timer.Intent
	ConfirmDelete bool
	DefaultTags   []string
	Logger        zerolog.Logger
	Now           func() time.Time
	Scheduler     timer.Scheduler
}

// Model is the main TUI model
type Model struct {
	store         *store.Store
	holder        *auth.Holder
	syncer        *remotesync.Syncer
	search        Searcher
	watcher       *watch.Watcher
	engine        *timer.Engine
	log           zerolog.Logger
	now           func() time.Time
	confirmDelete bool

	mode   viewMode
	focus  focusArea
	width  int
	height int

	// Tracker pane
	activity    textinput.Model
	description textinput.Model
	tagInput    textinput.Model
	tickGen     int

	// History pane
	list          list.Model
	filterInput   textinput.Model
	filtering     bool
	query         HistoryQuery
	searchHits    []models.TimeEntry
	pendingDelete string

	edit     editForm
	authForm authForm
	session  *auth.Session
	syncing  bool

	toast    string
	toastErr bool
	toastID  int
	err      error
}

// New creates the TUI model. The engine starts immediately when the intent asks for it.
func New(opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger.With().Str("component", "tui").Logger()

	engineOpts := []timer.Option{
		timer.WithClock(now),
		timer.WithSessionStarted(func() {
			log.Info().Msg("session started")
		}),
	}
	if opts.Scheduler != nil {
		engineOpts = append(engineOpts, timer.WithScheduler(opts.Scheduler))
	}
	engine := timer.New(opts.Intent, engineOpts...)
	if opts.Intent.Template == nil {
		for _, tag := range opts.DefaultTags {
			_, _ = engine.AddTag(tag)
		}
	}

	m := Model{
		store:         opts.Store,
		holder:        opts.Auth,
		syncer:        opts.Syncer,
		search:        opts.Search,
		watcher:       opts.Watcher,
		engine:        engine,
		log:           log,
		now:           now,
		confirmDelete: opts.ConfirmDelete,
		activity:      newInput("What are you working on?", 120),
		description:   newInput("Details (optional)", 500),
		tagInput:      newInput("Add a tag and press enter", 40),
		filterInput:   newInput("text tag:name after:monday before:2025-06-01", 200),
		list:          createHistoryList(nil, 80, 20),
		authForm:      newAuthForm(),
	}
	m.filterInput.Prompt = "/ "

	snap := engine.Snapshot()
	m.activity.SetValue(snap.Activity)
	m.description.SetValue(snap.Description)
	if snap.IsRunning() {
		m.setFocus(focusHistory)
	} else {
		m.setFocus(focusActivity)
	}
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 50
	return ti
}

// Engine exposes the stopwatch, mainly for tests and shutdown
func (m Model) Engine() *timer.Engine {
	return m.engine
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{bootstrap(m.store, m.holder), textinput.Blink}
	if m.watcher != nil {
		cmds = append(cmds, waitForChange(m.watcher))
	}
	if m.engine.Snapshot().IsRunning() {
		cmds = append(cmds, tick(m.tickGen))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.shutdown()
			return m, tea.Quit
		}

		switch m.mode {
		case mainView:
			return m.updateMain(msg)
		case editView:
			return m.updateEdit(msg)
		case authView:
			return m.updateAuth(msg)
		case helpView:
			return m.updateHelp(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, m.historyHeight())
		return m, nil

	case tickMsg:
		// Redraw once a second while the clock runs; stale loops just end
		if msg.gen == m.tickGen && m.engine.Snapshot().IsRunning() {
			return m, tick(msg.gen)
		}
		return m, nil

	case toastExpiredMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil

	case bootstrapMsg:
		m.session = msg.session
		if msg.err != nil {
			m.err = msg.err
			return m, m.showError("Could not load history", msg.err)
		}
		m.refreshHistory(msg.entries)
		return m, nil

	case entriesLoadedMsg:
		if msg.err != nil {
			return m, m.showError("Could not load history", msg.err)
		}
		m.err = nil
		m.refreshHistory(msg.entries)
		return m, nil

	case dbChangedMsg:
		return m, tea.Batch(loadEntries(m.store), waitForChange(m.watcher))

	case entrySavedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, store.ErrNotPersistable) {
				return m, m.showToast("Nothing to save")
			}
			return m, m.showError("Save failed", msg.err)
		}
		m.refreshHistory(m.store.Entries())
		return m, m.showToast("Saved " + msg.entry.Activity)

	case entryDeletedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, store.ErrBusy) {
				return m, m.showToast("A delete is already in progress")
			}
			return m, m.showError("Delete failed", msg.err)
		}
		m.refreshHistory(m.store.Entries())
		return m, m.showToast("Entry deleted")

	case entryUpdatedMsg:
		if msg.err != nil {
			m.edit.err = msg.err
			return m, m.showError("Update failed", msg.err)
		}
		m.mode = mainView
		m.refreshHistory(m.store.Entries())
		return m, m.showToast("Entry updated")

	case searchResultsMsg:
		if msg.query != m.query.Text {
			return m, nil
		}
		if msg.err != nil {
			return m, m.showError("Search failed", msg.err)
		}
		m.searchHits = msg.entries
		m.refreshHistory(m.store.Entries())
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			return m, m.showError("Copy failed", msg.err)
		}
		return m, m.showToast("Copied to clipboard")

	case authDoneMsg:
		return m.handleAuthDone(msg)

	case syncDoneMsg:
		m.syncing = false
		if msg.err != nil {
			return m, m.showError("Sync failed", msg.err)
		}
		m.log.Info().Int("pushed", msg.result.Pushed).Int("pulled", msg.result.Pulled).Msg("sync finished")
		return m, tea.Batch(
			loadEntries(m.store),
			m.showToast(syncSummary(msg.result)),
		)
	}

	return m.updateFocused(msg)
}

func (m Model) View() string {
	switch m.mode {
	case editView:
		return m.viewEdit()
	case authView:
		return m.viewAuth()
	case helpView:
		return m.viewHelp()
	default:
		return m.viewMain()
	}
}

// updateFocused forwards non-key messages (cursor blink) to the focused input
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case editView:
		m.edit.inputs[m.edit.focus], cmd = m.edit.inputs[m.edit.focus].Update(msg)
	case authView:
		m.authForm.inputs[m.authForm.focus], cmd = m.authForm.inputs[m.authForm.focus].Update(msg)
	default:
		switch {
		case m.filtering:
			m.filterInput, cmd = m.filterInput.Update(msg)
		case m.focus == focusActivity:
			m.activity, cmd = m.activity.Update(msg)
		case m.focus == focusDescription:
			m.description, cmd = m.description.Update(msg)
		case m.focus == focusTags:
			m.tagInput, cmd = m.tagInput.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.activity.Blur()
	m.description.Blur()
	m.tagInput.Blur()
	switch f {
	case focusActivity:
		m.activity.Focus()
	case focusDescription:
		m.description.Focus()
	case focusTags:
		m.tagInput.Focus()
	}
}

func (m *Model) showToast(text string) tea.Cmd {
	m.toastID++
	m.toast = text
	m.toastErr = false
	return expireToast(m.toastID, toastDuration)
}

func (m *Model) showError(prefix string, err error) tea.Cmd {
	m.log.Error().Err(err).Msg(strings.ToLower(prefix))
	cmd := m.showToast(prefix + ": " + err.Error())
	m.toastErr = true
	return cmd
}

// shutdown saves a session still in progress before the program exits
func (m *Model) shutdown() {
	defer m.engine.Close()
	if m.engine.Snapshot().Status == timer.Idle {
		return
	}
	done, ok, err := m.engine.Stop()
	if err != nil || !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if _, err := m.store.Append(ctx, done); err != nil {
		m.log.Error().Err(err).Msg("failed to save session on exit")
	}
}

func (m Model) historyHeight() int {
	// Tracker pane, headers, toast and help lines
	h := m.height - 14
	if h < 4 {
		return 4
	}
	return h
}

func syncSummary(r remotesync.Result) string {
	if r.Pushed == 0 && r.Pulled == 0 {
		return "Already up to date"
	}
	return "Synced: " + plural(r.Pushed, "entry", "entries") + " up, " + plural(r.Pulled, "entry", "entries") + " down"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
