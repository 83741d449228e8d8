package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/timer"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

// Stopwatch is the single-line timer behind `tickr start`. It never
// persists anything itself; the caller reads Result after the program exits.
type Stopwatch struct {
	engine  *timer.Engine
	gen     int
	done    models.Completed
	save    bool
	stopped bool
}

// NewStopwatch wraps an engine that has usually been started already
func NewStopwatch(e *timer.Engine) Stopwatch {
	return Stopwatch{engine: e}
}

// Result returns the completed session and whether it should be stored
func (s Stopwatch) Result() (models.Completed, bool) {
	return s.done, s.save
}

func (s Stopwatch) Init() tea.Cmd {
	if s.engine.Snapshot().IsRunning() {
		return tick(s.gen)
	}
	return nil
}

func (s Stopwatch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "p", " ", "enter":
			if s.engine.Snapshot().IsRunning() {
				_ = s.engine.Pause()
				s.gen++
				return s, nil
			}
			if err := s.engine.Start(); err != nil {
				return s, nil
			}
			s.gen++
			return s, tick(s.gen)

		case "s", "q", "ctrl+c":
			done, ok, err := s.engine.Stop()
			s.done = done
			s.save = ok && err == nil
			s.stopped = true
			return s, tea.Quit

		case "x":
			// Discard
			_, _, _ = s.engine.Stop()
			s.stopped = true
			return s, tea.Quit
		}

	case tickMsg:
		if msg.gen == s.gen && s.engine.Snapshot().IsRunning() {
			return s, tick(msg.gen)
		}
	}
	return s, nil
}

func (s Stopwatch) View() string {
	if s.stopped {
		return ""
	}
	snap := s.engine.Snapshot()

	status := runningStyle.Render("●")
	if snap.Status == timer.Paused {
		status = pausedStyle.Render("❚❚")
	}

	line := status + " " + titleStyle.Render(snap.Activity) + " " + clockStyle.Render(timefmt.Format(snap.Elapsed))
	if len(snap.Tags) > 0 {
		tags := make([]string, len(snap.Tags))
		for i, t := range snap.Tags {
			tags[i] = "#" + t
		}
		line += tagStyle.Render(strings.Join(tags, " "))
	}
	return line + "\n" + helpStyle.Render("p pause/resume • s stop and save • x discard") + "\n"
}
