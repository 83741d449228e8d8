package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/tickr/internal/core/auth"
	"github.com/neilberkman/tickr/internal/core/editor"
	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/store"
	"github.com/neilberkman/tickr/internal/core/timer"
)

var testNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local)

type harness struct {
	store *store.Store
	sched *timer.ManualScheduler
}

func newTestModel(t *testing.T, opts Options, seed ...models.TimeEntry) (Model, harness) {
	t.Helper()
	h := harness{
		store: store.New(store.NewMemoryBackend(seed...), store.WithClock(func() time.Time { return testNow })),
		sched: timer.NewManualScheduler(),
	}
	opts.Store = h.store
	opts.Scheduler = h.sched
	opts.Now = func() time.Time { return testNow }

	m := New(opts)
	t.Cleanup(m.Engine().Close)

	// Run the bootstrap load synchronously
	m, _ = send(t, m, bootstrap(h.store, opts.Auth)())
	return m, h
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func seedEntry(id, activity string, elapsed int64, tags ...string) models.TimeEntry {
	start := testNow.Add(-3 * time.Hour)
	return models.TimeEntry{
		ID:           id,
		Activity:     activity,
		Tags:         tags,
		Elapsed:      elapsed,
		Timestamp:    start,
		LastModified: start,
	}
}

func TestStartStopSavesSession(t *testing.T) {
	m, h := newTestModel(t, Options{})

	m, _ = send(t, m, runes("Writing"))
	m, _ = send(t, m, key(tea.KeyCtrlS))
	require.True(t, m.Engine().Snapshot().IsRunning())
	assert.Equal(t, focusHistory, m.focus)

	h.sched.Advance(3)
	m, cmd := send(t, m, key(tea.KeyCtrlX))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	entries := h.store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Writing", entries[0].Activity)
	assert.Equal(t, int64(3), entries[0].Elapsed)
	assert.Len(t, m.list.Items(), 1)

	// Activity survives the stop, elapsed resets
	snap := m.Engine().Snapshot()
	assert.Equal(t, timer.Idle, snap.Status)
	assert.Equal(t, "Writing", snap.Activity)
	assert.Zero(t, snap.Elapsed)
}

func TestStartWithBlankActivity(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m, _ = send(t, m, key(tea.KeyCtrlS))
	assert.Equal(t, timer.Idle, m.Engine().Snapshot().Status)
	assert.Equal(t, "Name the activity first", m.toast)
	assert.Equal(t, focusActivity, m.focus)
}

func TestPauseResume(t *testing.T) {
	m, h := newTestModel(t, Options{})

	m, _ = send(t, m, runes("Reading"))
	m, _ = send(t, m, key(tea.KeyCtrlS))
	h.sched.Advance(2)
	m, _ = send(t, m, key(tea.KeyCtrlS))
	assert.Equal(t, timer.Paused, m.Engine().Snapshot().Status)

	h.sched.Advance(5)
	assert.Equal(t, int64(2), m.Engine().Snapshot().Elapsed)

	m, _ = send(t, m, key(tea.KeyCtrlS))
	h.sched.Advance(1)
	assert.Equal(t, int64(3), m.Engine().Snapshot().Elapsed)
}

func TestStopZeroElapsedSavesNothing(t *testing.T) {
	m, h := newTestModel(t, Options{})

	m, _ = send(t, m, runes("Blink"))
	m, _ = send(t, m, key(tea.KeyCtrlS))
	m, cmd := send(t, m, key(tea.KeyCtrlX))
	require.NotNil(t, cmd)
	assert.Equal(t, "Nothing to save", m.toast)
	assert.Empty(t, h.store.Entries())
}

func TestEditsRejectedWhileRunning(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m, _ = send(t, m, runes("A"))
	m, _ = send(t, m, key(tea.KeyCtrlS))
	m, _ = send(t, m, key(tea.KeyTab)) // history -> activity
	require.Equal(t, focusActivity, m.focus)

	m, _ = send(t, m, runes("B"))
	assert.Equal(t, "A", m.Engine().Snapshot().Activity)
	assert.Equal(t, "Pause the timer to edit", m.toast)
}

func TestTagInput(t *testing.T) {
	m, _ := newTestModel(t, Options{DefaultTags: []string{"work"}})
	assert.Equal(t, []string{"work"}, m.Engine().Snapshot().Tags)

	m, _ = send(t, m, key(tea.KeyTab))
	m, _ = send(t, m, key(tea.KeyTab))
	require.Equal(t, focusTags, m.focus)

	m, _ = send(t, m, runes("docs"))
	m, _ = send(t, m, key(tea.KeyEnter))
	assert.Equal(t, []string{"work", "docs"}, m.Engine().Snapshot().Tags)
	assert.Empty(t, m.tagInput.Value())

	m, _ = send(t, m, runes("docs"))
	m, _ = send(t, m, key(tea.KeyEnter))
	assert.Equal(t, "Tag already added", m.toast)
	assert.Len(t, m.Engine().Snapshot().Tags, 2)

	m, _ = send(t, m, key(tea.KeyBackspace))
	assert.Equal(t, []string{"work"}, m.Engine().Snapshot().Tags)

	m, _ = send(t, m, runes("x, y"))
	m, _ = send(t, m, key(tea.KeyEnter))
	assert.Equal(t, []string{"work", "x", "y"}, m.Engine().Snapshot().Tags)
}

func TestIntentAutoStart(t *testing.T) {
	tmpl := models.Template{Activity: "Standup", Tags: []string{"team"}}
	m, _ := newTestModel(t, Options{Intent: timer.Intent{Template: &tmpl, AutoStart: true}})

	snap := m.Engine().Snapshot()
	assert.True(t, snap.IsRunning())
	assert.Equal(t, "Standup", m.activity.Value())
	assert.Equal(t, focusHistory, m.focus)
}

func TestHistoryReseedDoesNotStart(t *testing.T) {
	m, _ := newTestModel(t, Options{}, seedEntry("e1", "Review", 600, "code"))
	m, _ = send(t, m, key(tea.KeyEsc))
	require.Equal(t, focusHistory, m.focus)

	m, _ = send(t, m, runes("r"))
	snap := m.Engine().Snapshot()
	assert.Equal(t, timer.Idle, snap.Status)
	assert.Equal(t, "Review", snap.Activity)
	assert.Equal(t, []string{"code"}, snap.Tags)
	assert.Zero(t, snap.Elapsed)
	assert.Equal(t, "Review", m.activity.Value())
}

func TestHistoryStartAgain(t *testing.T) {
	m, _ := newTestModel(t, Options{}, seedEntry("e1", "Review", 600, "code"))
	m, _ = send(t, m, key(tea.KeyEsc))

	m, _ = send(t, m, runes("a"))
	snap := m.Engine().Snapshot()
	assert.True(t, snap.IsRunning())
	assert.Equal(t, "Review", snap.Activity)
	assert.Zero(t, snap.Elapsed)
}

func TestStartAgainWhileRunningIsRefused(t *testing.T) {
	m, _ := newTestModel(t, Options{}, seedEntry("e1", "Review", 600))
	m, _ = send(t, m, runes("Other"))
	m, _ = send(t, m, key(tea.KeyCtrlS))

	m, _ = send(t, m, runes("a"))
	assert.Equal(t, "Other", m.Engine().Snapshot().Activity)
	assert.Equal(t, "Stop the current session first", m.toast)
}

func TestDeleteWithConfirmation(t *testing.T) {
	m, h := newTestModel(t, Options{ConfirmDelete: true}, seedEntry("e1", "Review", 600))
	m, _ = send(t, m, key(tea.KeyEsc))

	m, _ = send(t, m, runes("d"))
	assert.Equal(t, "e1", m.pendingDelete)
	assert.Len(t, h.store.Entries(), 1)

	m, cmd := send(t, m, runes("d"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.Empty(t, h.store.Entries())
	assert.Empty(t, m.list.Items())
	assert.Equal(t, "Entry deleted", m.toast)
}

func TestDeleteConfirmationResetByOtherKey(t *testing.T) {
	m, h := newTestModel(t, Options{ConfirmDelete: true}, seedEntry("e1", "Review", 600))
	m, _ = send(t, m, key(tea.KeyEsc))

	m, _ = send(t, m, runes("d"))
	m, _ = send(t, m, key(tea.KeyDown))
	assert.Empty(t, m.pendingDelete)

	m, _ = send(t, m, runes("d"))
	assert.Equal(t, "e1", m.pendingDelete)
	assert.Len(t, h.store.Entries(), 1)
}

func TestFilterByTag(t *testing.T) {
	m, _ := newTestModel(t, Options{},
		seedEntry("e1", "Review", 600, "work"),
		seedEntry("e2", "Gardening", 1200, "home"),
	)
	m, _ = send(t, m, key(tea.KeyEsc))
	require.Len(t, m.list.Items(), 2)

	m, _ = send(t, m, runes("/"))
	require.True(t, m.filtering)
	m, _ = send(t, m, runes("tag:home"))
	m, _ = send(t, m, key(tea.KeyEnter))

	require.Len(t, m.list.Items(), 1)
	assert.Equal(t, "e2", m.list.Items()[0].(historyItem).entry.ID)

	m, _ = send(t, m, key(tea.KeyEsc))
	assert.Len(t, m.list.Items(), 2)
}

func TestFilterUsesFullTextSearch(t *testing.T) {
	var gotQuery string
	search := func(_ context.Context, q string, _ int) ([]models.TimeEntry, error) {
		gotQuery = q
		return []models.TimeEntry{{ID: "e1"}}, nil
	}
	m, _ := newTestModel(t, Options{Search: search},
		seedEntry("e1", "Review", 600),
		seedEntry("e2", "Gardening", 1200),
	)
	m, _ = send(t, m, key(tea.KeyEsc))
	m, _ = send(t, m, runes("/"))
	m, _ = send(t, m, runes("pull"))
	m, cmd := send(t, m, key(tea.KeyEnter))
	require.NotNil(t, cmd)

	m, _ = send(t, m, cmd())
	assert.Equal(t, "pull", gotQuery)
	require.Len(t, m.list.Items(), 1)
	assert.Equal(t, "e1", m.list.Items()[0].(historyItem).entry.ID)
}

func TestEditEntry(t *testing.T) {
	e := seedEntry("e1", "Review", 600, "code")
	m, h := newTestModel(t, Options{}, e)
	m, _ = send(t, m, key(tea.KeyEsc))

	m, _ = send(t, m, runes("e"))
	require.Equal(t, editView, m.mode)
	assert.Equal(t, "Review", m.edit.inputs[editActivity].Value())
	assert.Equal(t, "code", m.edit.inputs[editTags].Value())

	m.edit.inputs[editActivity].SetValue("Code review")
	m.edit.inputs[editEnd].SetValue(editor.FormatTime(e.Timestamp.Add(90 * time.Minute)))

	m, cmd := send(t, m, key(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.Equal(t, mainView, m.mode)

	got, ok := h.store.Get("e1")
	require.True(t, ok)
	assert.Equal(t, "Code review", got.Activity)
	assert.Equal(t, int64(5400), got.Elapsed)
	assert.Equal(t, []string{"code"}, got.Tags)
}

func TestEditClockTimesStayOnEntryDay(t *testing.T) {
	e := seedEntry("e1", "Review", 1800)
	e.Timestamp = time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local)
	m, h := newTestModel(t, Options{}, e)
	m, _ = send(t, m, key(tea.KeyEsc))
	m, _ = send(t, m, runes("e"))
	require.Equal(t, editView, m.mode)

	m.edit.inputs[editEnd].SetValue("10:45")
	m, cmd := send(t, m, key(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	assert.Empty(t, m.edit.fieldErrs)
	m, _ = send(t, m, cmd())

	got, ok := h.store.Get("e1")
	require.True(t, ok)
	assert.Equal(t, int64(2700), got.Elapsed)
	assert.True(t, e.Timestamp.Equal(got.Timestamp))

	// Moving the start to another day carries a clock-only end with it
	m, _ = send(t, m, runes("e"))
	m.edit.inputs[editStart].SetValue("2025-03-02 09:00")
	m.edit.inputs[editEnd].SetValue("09:30")
	m, cmd = send(t, m, key(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	got, _ = h.store.Get("e1")
	assert.Equal(t, int64(1800), got.Elapsed)
	assert.True(t, time.Date(2025, 3, 2, 9, 0, 0, 0, time.Local).Equal(got.Timestamp))
}

func TestEditRejectsUnparsableTime(t *testing.T) {
	m, _ := newTestModel(t, Options{}, seedEntry("e1", "Review", 600))
	m, _ = send(t, m, key(tea.KeyEsc))
	m, _ = send(t, m, runes("e"))

	m.edit.inputs[editStart].SetValue("not a time")
	m, cmd := send(t, m, key(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	assert.Equal(t, editView, m.mode)
	assert.Contains(t, m.edit.fieldErrs, editStart)
}

func TestEditEscCancels(t *testing.T) {
	m, h := newTestModel(t, Options{}, seedEntry("e1", "Review", 600))
	m, _ = send(t, m, key(tea.KeyEsc))
	m, _ = send(t, m, runes("e"))
	m.edit.inputs[editActivity].SetValue("Changed")

	m, _ = send(t, m, key(tea.KeyEsc))
	assert.Equal(t, mainView, m.mode)
	got, _ := h.store.Get("e1")
	assert.Equal(t, "Review", got.Activity)
}

func TestQuitSavesRunningSession(t *testing.T) {
	m, h := newTestModel(t, Options{})

	m, _ = send(t, m, runes("Writing"))
	m, _ = send(t, m, key(tea.KeyCtrlS))
	h.sched.Advance(2)

	_, cmd := send(t, m, key(tea.KeyCtrlC))
	require.NotNil(t, cmd)

	entries := h.store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].Elapsed)
}

type stubProvider struct {
	resp   *auth.Response
	err    error
	signIn int
}

func (p *stubProvider) SignUp(context.Context, auth.SignUpRequest) (*auth.Response, error) {
	return p.resp, p.err
}

func (p *stubProvider) SignIn(context.Context, auth.SignInRequest) (*auth.Response, error) {
	p.signIn++
	return p.resp, p.err
}

func (p *stubProvider) GetSession(context.Context, string) (*auth.Session, error) {
	return nil, nil
}

func (p *stubProvider) SignOut(context.Context, string) error {
	return nil
}

func openSignIn(t *testing.T, m Model, email, password string) (Model, tea.Cmd) {
	t.Helper()
	m, _ = send(t, m, key(tea.KeyEsc))
	m, _ = send(t, m, runes("u"))
	require.Equal(t, authView, m.mode)

	m, _ = send(t, m, runes(email))
	m, _ = send(t, m, key(tea.KeyTab))
	m, _ = send(t, m, runes(password))
	return send(t, m, key(tea.KeyEnter))
}

func TestSignInShowsFieldErrors(t *testing.T) {
	p := &stubProvider{}
	m, _ := newTestModel(t, Options{Auth: auth.NewHolder(p)})

	m, cmd := openSignIn(t, m, "not-an-email", "x")
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Equal(t, authView, m.mode)
	assert.Equal(t, auth.MsgInvalidEmail, m.authForm.errs["email"])
	assert.Zero(t, p.signIn)
}

func TestSignInInvalidCredentials(t *testing.T) {
	p := &stubProvider{err: auth.ErrInvalidCredentials}
	m, _ := newTestModel(t, Options{Auth: auth.NewHolder(p)})

	m, cmd := openSignIn(t, m, "ada@example.com", "secret123")
	m, _ = send(t, m, cmd())

	assert.Equal(t, authView, m.mode)
	assert.Equal(t, "Invalid email or password", m.authForm.failure)
	assert.Nil(t, m.session)
}

func TestSignInSuccess(t *testing.T) {
	p := &stubProvider{resp: &auth.Response{
		User:  auth.User{ID: "u1", Name: "Ada", Email: "ada@example.com"},
		Token: "tok",
	}}
	holder := auth.NewHolder(p)
	m, _ := newTestModel(t, Options{Auth: holder})

	m, cmd := openSignIn(t, m, "ada@example.com", "secret123")
	m, _ = send(t, m, cmd())

	assert.Equal(t, mainView, m.mode)
	require.NotNil(t, m.session)
	assert.Equal(t, "Signed in as Ada", m.toast)
	assert.Equal(t, "tok", holder.Token())
	assert.Contains(t, m.viewProfileLine(), "Ada")
}

func TestSyncRequiresSignIn(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m, _ = send(t, m, key(tea.KeyEsc))

	m, cmd := send(t, m, runes("y"))
	assert.NotNil(t, cmd)
	assert.False(t, m.syncing)
	assert.Equal(t, "Sync server is not configured", m.toast)
}

func TestViewRenders(t *testing.T) {
	m, _ := newTestModel(t, Options{}, seedEntry("e1", "Review", 600, "code"))
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	out := m.View()
	assert.Contains(t, out, "tickr")
	assert.Contains(t, out, "History")
	assert.Contains(t, out, "Review")

	m, _ = send(t, m, key(tea.KeyEsc))
	m, _ = send(t, m, runes("?"))
	assert.Contains(t, m.View(), "HISTORY")
}
