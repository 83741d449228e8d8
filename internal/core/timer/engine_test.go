package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/tickr/internal/core/models"
)

var fixedStart = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T, intent Intent, opts ...Option) (*Engine, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler()
	opts = append([]Option{WithScheduler(sched), WithClock(func() time.Time { return fixedStart })}, opts...)
	e := New(intent, opts...)
	t.Cleanup(e.Close)
	return e, sched
}

func TestStartWithBlankActivityIsNoop(t *testing.T) {
	e, sched := newTestEngine(t, Intent{})

	require.ErrorIs(t, e.Start(), ErrBlankActivity)
	require.NoError(t, e.SetActivity("   "))
	require.ErrorIs(t, e.Start(), ErrBlankActivity)

	s := e.Snapshot()
	assert.Equal(t, Idle, s.Status)
	assert.Equal(t, 0, sched.Active())
}

func TestTickAdvancesOnlyWhileRunning(t *testing.T) {
	e, sched := newTestEngine(t, Intent{})
	require.NoError(t, e.SetActivity("Writing"))
	require.NoError(t, e.Start())

	sched.Advance(3)
	assert.Equal(t, int64(3), e.Snapshot().Elapsed)

	require.NoError(t, e.Pause())
	assert.Equal(t, 0, sched.Active(), "pause must cancel the tick")
	sched.Advance(5)
	assert.Equal(t, int64(3), e.Snapshot().Elapsed)
	assert.Equal(t, Paused, e.Snapshot().Status)

	require.NoError(t, e.Start())
	sched.Advance(2)
	assert.Equal(t, int64(5), e.Snapshot().Elapsed)
}

func TestStaleTickIsIgnored(t *testing.T) {
	e, _ := newTestEngine(t, Intent{})
	require.NoError(t, e.SetActivity("Writing"))
	require.NoError(t, e.Start())

	e.mu.Lock()
	staleGen := e.gen
	e.mu.Unlock()

	require.NoError(t, e.Pause())
	require.NoError(t, e.Start())

	// A callback captured before the pause fires late
	e.tick(staleGen)
	assert.Equal(t, int64(0), e.Snapshot().Elapsed)
}

func TestStopResetsFromRunningAndPaused(t *testing.T) {
	for _, pauseFirst := range []bool{false, true} {
		e, sched := newTestEngine(t, Intent{})
		require.NoError(t, e.SetActivity("Review"))
		require.NoError(t, e.SetDescription("PR 42"))
		_, err := e.AddTag("code")
		require.NoError(t, err)
		require.NoError(t, e.Start())
		sched.Advance(125)
		if pauseFirst {
			require.NoError(t, e.Pause())
		}

		done, ok, err := e.Stop()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(125), done.Elapsed)
		assert.Equal(t, "Review", done.Activity)
		assert.Equal(t, []string{"code"}, done.Tags)
		assert.Equal(t, fixedStart, done.StartedAt)

		s := e.Snapshot()
		assert.Equal(t, Idle, s.Status)
		assert.Equal(t, int64(0), s.Elapsed)
		assert.True(t, s.StartedAt.IsZero())
		// Fields stay for the next session
		assert.Equal(t, "Review", s.Activity)
		assert.Equal(t, "PR 42", s.Description)
		assert.Equal(t, []string{"code"}, s.Tags)
		assert.Equal(t, 0, sched.Active())
	}
}

func TestStopAtZeroElapsedIsNotPersistable(t *testing.T) {
	e, _ := newTestEngine(t, Intent{})
	require.NoError(t, e.SetActivity("Writing"))
	require.NoError(t, e.Start())

	_, ok, err := e.Stop()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Idle, e.Snapshot().Status)
}

func TestStopWhileIdle(t *testing.T) {
	e, _ := newTestEngine(t, Intent{})
	_, ok, err := e.Stop()
	assert.ErrorIs(t, err, ErrIdle)
	assert.False(t, ok)
}

func TestPauseRequiresRunning(t *testing.T) {
	e, _ := newTestEngine(t, Intent{})
	assert.ErrorIs(t, e.Pause(), ErrNotRunning)
}

func TestEditsRejectedWhileRunning(t *testing.T) {
	e, _ := newTestEngine(t, Intent{})
	require.NoError(t, e.SetActivity("Writing"))
	require.NoError(t, e.Start())

	assert.ErrorIs(t, e.SetActivity("Other"), ErrRunning)
	assert.ErrorIs(t, e.SetDescription("x"), ErrRunning)
	_, err := e.AddTag("x")
	assert.ErrorIs(t, err, ErrRunning)
	assert.ErrorIs(t, e.RemoveTag("x"), ErrRunning)
	assert.ErrorIs(t, e.Start(), ErrRunning)

	// Allowed again once paused
	require.NoError(t, e.Pause())
	assert.NoError(t, e.SetActivity("Other"))
}

func TestTagsDeduplicated(t *testing.T) {
	e, _ := newTestEngine(t, Intent{})

	added, err := e.AddTag(" a ")
	require.NoError(t, err)
	assert.True(t, added)
	added, _ = e.AddTag("a")
	assert.False(t, added)
	_, _ = e.AddTag("b")
	_, _ = e.AddTag("c")
	require.NoError(t, e.RemoveTag("b"))

	assert.Equal(t, []string{"a", "c"}, e.Snapshot().Tags)
}

func TestReseedDoesNotStart(t *testing.T) {
	e, sched := newTestEngine(t, Intent{})

	require.NoError(t, e.Reseed(models.Template{Activity: "X", Tags: []string{"a", "b"}}))
	s := e.Snapshot()
	assert.Equal(t, Idle, s.Status)
	assert.Equal(t, "X", s.Activity)
	assert.Equal(t, []string{"a", "b"}, s.Tags)
	assert.Equal(t, int64(0), s.Elapsed)
	assert.Equal(t, 0, sched.Active())

	require.NoError(t, e.Start())
	assert.ErrorIs(t, e.Reseed(models.Template{Activity: "Y"}), ErrNotIdle)
}

func TestIntentAutoStart(t *testing.T) {
	started := 0
	tpl := &models.Template{Activity: "X", Tags: []string{"a"}}

	e, sched := newTestEngine(t, Intent{Template: tpl, AutoStart: true},
		WithSessionStarted(func() { started++ }))
	assert.Equal(t, Running, e.Snapshot().Status)
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, sched.Active())

	// Template without auto start stays idle
	e2, _ := newTestEngine(t, Intent{Template: tpl})
	assert.Equal(t, Idle, e2.Snapshot().Status)
	assert.Equal(t, "X", e2.Snapshot().Activity)

	// Blank template never auto starts
	e3, _ := newTestEngine(t, Intent{Template: &models.Template{}, AutoStart: true})
	assert.Equal(t, Idle, e3.Snapshot().Status)
}

func TestSessionStartedFiresOncePerSession(t *testing.T) {
	started := 0
	e, sched := newTestEngine(t, Intent{}, WithSessionStarted(func() { started++ }))
	require.NoError(t, e.SetActivity("Writing"))

	require.NoError(t, e.Start())
	require.NoError(t, e.Pause())
	require.NoError(t, e.Start())
	assert.Equal(t, 1, started, "resume must not count as a new session")

	sched.Fire()
	_, _, err := e.Stop()
	require.NoError(t, err)
	require.NoError(t, e.Start())
	assert.Equal(t, 2, started)
}

func TestCloseCancelsTick(t *testing.T) {
	sched := NewManualScheduler()
	e := New(Intent{}, WithScheduler(sched))
	require.NoError(t, e.SetActivity("Writing"))
	require.NoError(t, e.Start())

	e.Close()
	assert.Equal(t, 0, sched.Active())
	assert.ErrorIs(t, e.Start(), ErrClosed)
}

func TestSnapshotIsACopy(t *testing.T) {
	e, _ := newTestEngine(t, Intent{})
	_, _ = e.AddTag("a")

	s := e.Snapshot()
	s.Tags[0] = "mutated"
	assert.Equal(t, []string{"a"}, e.Snapshot().Tags)
}

func TestTickerSchedulerCancel(t *testing.T) {
	ticks := make(chan struct{}, 10)
	cancel := TickerScheduler{}.Every(5*time.Millisecond, func() { ticks <- struct{}{} })

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("ticker never fired")
	}
	cancel()
	cancel() // second cancel is harmless
}
