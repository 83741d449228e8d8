// Package timer implements the start/pause/stop stopwatch that feeds the entry store.
package timer

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/neilberkman/tickr/internal/core/models"
)

var (
	ErrBlankActivity = errors.New("activity is required")
	ErrRunning       = errors.New("timer is running")
	ErrNotRunning    = errors.New("timer is not running")
	ErrIdle          = errors.New("timer is idle")
	ErrNotIdle       = errors.New("timer has a session in progress")
	ErrClosed        = errors.New("timer is closed")
)

// Status is the engine lifecycle state
type Status int

const (
	Idle Status = iota
	Running
	Paused
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// State is a copy of the engine's in-progress session
type State struct {
	Status      Status
	Activity    string
	Description string
	Tags        []string
	Elapsed     int64
	StartedAt   time.Time // zero while idle
}

// IsRunning reports whether the clock is ticking
func (s State) IsRunning() bool {
	return s.Status == Running
}

// Intent seeds a new engine. When AutoStart is set and the template has an
// activity, the engine starts right away.
type Intent struct {
	Template  *models.Template
	AutoStart bool
}

// Option configures an Engine
type Option func(*Engine)

// WithScheduler replaces the default ticker scheduler
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSessionStarted registers a callback fired on the first start of each
// session (not when resuming from pause)
func WithSessionStarted(fn func()) Option {
	return func(e *Engine) { e.onSessionStart = fn }
}

// Engine owns the in-progress TimerState. It advances Elapsed by one on
// every scheduler tick while running.
type Engine struct {
	mu             sync.Mutex
	state          State
	sched          Scheduler
	now            func() time.Time
	onSessionStart func()
	cancel         func()
	gen            uint64
	closed         bool
}

// New creates an idle engine, applies the intent's template and optionally starts it
func New(intent Intent, opts ...Option) *Engine {
	e := &Engine{
		sched: TickerScheduler{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if intent.Template != nil {
		e.applyTemplate(*intent.Template)
		if intent.AutoStart {
			_ = e.Start()
		}
	}
	return e
}

// Start moves idle or paused to running. Blank activity leaves the engine untouched.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if strings.TrimSpace(e.state.Activity) == "" {
		e.mu.Unlock()
		return ErrBlankActivity
	}
	if e.state.Status == Running {
		e.mu.Unlock()
		return ErrRunning
	}

	first := e.state.Status == Idle
	if first {
		e.state.StartedAt = e.now()
	}
	e.state.Status = Running
	e.gen++
	gen := e.gen
	e.cancel = e.sched.Every(time.Second, func() { e.tick(gen) })
	notify := e.onSessionStart
	e.mu.Unlock()

	if first && notify != nil {
		notify()
	}
	return nil
}

// tick ignores callbacks from a schedule that has since been cancelled
func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || e.state.Status != Running {
		return
	}
	e.state.Elapsed++
}

// Pause freezes elapsed time
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status != Running {
		return ErrNotRunning
	}
	e.stopTickingLocked()
	e.state.Status = Paused
	return nil
}

// Stop ends the session from running or paused. The returned bool is true
// when the session has elapsed time and an activity and should be stored.
// Elapsed resets to zero; activity, description and tags are kept.
func (e *Engine) Stop() (models.Completed, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status == Idle {
		return models.Completed{}, false, ErrIdle
	}
	e.stopTickingLocked()

	done := models.Completed{
		Activity:    strings.TrimSpace(e.state.Activity),
		Description: strings.TrimSpace(e.state.Description),
		Tags:        append([]string(nil), e.state.Tags...),
		Elapsed:     e.state.Elapsed,
		StartedAt:   e.state.StartedAt,
	}

	e.state.Status = Idle
	e.state.Elapsed = 0
	e.state.StartedAt = time.Time{}

	return done, done.Persistable(), nil
}

// Reseed overwrites activity, description and tags from a template. It
// never starts the clock.
func (e *Engine) Reseed(t models.Template) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status != Idle {
		return ErrNotIdle
	}
	e.applyTemplateLocked(t)
	return nil
}

// SetActivity edits the activity label; not allowed while running
func (e *Engine) SetActivity(activity string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status == Running {
		return ErrRunning
	}
	e.state.Activity = activity
	return nil
}

// SetDescription edits the description; not allowed while running
func (e *Engine) SetDescription(description string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status == Running {
		return ErrRunning
	}
	e.state.Description = description
	return nil
}

// AddTag adds a trimmed, unique tag. It reports false for blanks and duplicates.
func (e *Engine) AddTag(tag string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status == Running {
		return false, ErrRunning
	}
	var added bool
	e.state.Tags, added = models.AddTag(e.state.Tags, tag)
	return added, nil
}

// RemoveTag removes an exact match
func (e *Engine) RemoveTag(tag string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Status == Running {
		return ErrRunning
	}
	e.state.Tags = models.RemoveTag(e.state.Tags, tag)
	return nil
}

// Snapshot returns a copy of the current state
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.Tags = append([]string(nil), e.state.Tags...)
	return s
}

// Close cancels any pending tick. The engine rejects Start afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTickingLocked()
	if e.state.Status == Running {
		e.state.Status = Paused
	}
	e.closed = true
}

func (e *Engine) stopTickingLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.gen++
}

func (e *Engine) applyTemplate(t models.Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyTemplateLocked(t)
}

func (e *Engine) applyTemplateLocked(t models.Template) {
	e.state.Activity = t.Activity
	e.state.Description = t.Description
	e.state.Tags = append([]string(nil), t.Tags...)
}
