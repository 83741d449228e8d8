package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/timer"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.updateFilter(msg)
	}

	// A delete confirmation only survives until the next key
	pending := m.pendingDelete
	m.pendingDelete = ""

	switch msg.String() {
	case "ctrl+s":
		return m.toggleTimer()
	case "ctrl+x":
		return m.stopTimer()
	case "tab":
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	case "shift+tab":
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	}

	if m.focus == focusHistory {
		return m.updateHistory(msg, pending)
	}
	return m.updateTracker(msg)
}

func (m Model) updateTracker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.setFocus(focusHistory)
		return m, nil

	case "enter":
		if m.focus != focusTags {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		if strings.TrimSpace(m.tagInput.Value()) == "" {
			return m.toggleTimer()
		}
		// "a, b" adds two tags
		added := 0
		for _, tag := range models.ParseTags(m.tagInput.Value()) {
			ok, err := m.engine.AddTag(tag)
			if err != nil {
				return m, m.showToast("Pause the timer to edit")
			}
			if ok {
				added++
			}
		}
		m.tagInput.SetValue("")
		if added == 0 {
			return m, m.showToast("Tag already added")
		}
		return m, nil

	case "backspace":
		if m.focus == focusTags && m.tagInput.Value() == "" {
			tags := m.engine.Snapshot().Tags
			if len(tags) == 0 {
				return m, nil
			}
			if err := m.engine.RemoveTag(tags[len(tags)-1]); err != nil {
				return m, m.showToast("Pause the timer to edit")
			}
			return m, nil
		}
	}

	if m.engine.Snapshot().IsRunning() {
		return m, m.showToast("Pause the timer to edit")
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusActivity:
		m.activity, cmd = m.activity.Update(msg)
		_ = m.engine.SetActivity(m.activity.Value())
	case focusDescription:
		m.description, cmd = m.description.Update(msg)
		_ = m.engine.SetDescription(m.description.Value())
	case focusTags:
		m.tagInput, cmd = m.tagInput.Update(msg)
	}
	return m, cmd
}

// toggleTimer starts, pauses or resumes depending on the current state
func (m Model) toggleTimer() (tea.Model, tea.Cmd) {
	if m.engine.Snapshot().IsRunning() {
		if err := m.engine.Pause(); err != nil {
			return m, m.showError("Pause failed", err)
		}
		m.tickGen++
		return m, m.showToast("Paused")
	}

	if err := m.engine.Start(); err != nil {
		if errors.Is(err, timer.ErrBlankActivity) {
			m.setFocus(focusActivity)
			return m, m.showToast("Name the activity first")
		}
		return m, m.showError("Start failed", err)
	}
	m.tickGen++
	m.setFocus(focusHistory)
	return m, tick(m.tickGen)
}

func (m Model) stopTimer() (tea.Model, tea.Cmd) {
	done, ok, err := m.engine.Stop()
	if err != nil {
		return m, m.showToast("Timer is not running")
	}
	m.tickGen++
	if !ok {
		return m, m.showToast("Nothing to save")
	}
	return m, saveCompleted(m.store, done)
}

// reseed copies an entry's activity, description and tags into the tracker
func (m *Model) reseed(e models.TimeEntry) error {
	if err := m.engine.Reseed(models.TemplateFrom(e)); err != nil {
		return err
	}
	m.activity.SetValue(e.Activity)
	m.description.SetValue(e.Description)
	m.tagInput.SetValue("")
	return nil
}

func (m Model) viewTracker() string {
	snap := m.engine.Snapshot()

	var status string
	switch snap.Status {
	case timer.Running:
		status = runningStyle.Render("● RUNNING")
	case timer.Paused:
		status = pausedStyle.Render("❚❚ PAUSED")
	default:
		status = idleStyle.Render("○ IDLE")
	}
	clock := clockStyle.Render(timefmt.Format(snap.Elapsed))

	var tags []string
	for _, t := range snap.Tags {
		tags = append(tags, tagStyle.Render("#"+t))
	}
	tagLine := strings.Join(tags, " ")
	if tagLine != "" {
		tagLine += " "
	}

	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Center, status, clock),
		"",
		labelStyle.Render("Activity") + m.activity.View(),
		labelStyle.Render("Description") + m.description.View(),
		labelStyle.Render("Tags") + tagLine + m.tagInput.View(),
	}

	style := paneStyle
	if m.focus != focusHistory && !m.filtering {
		style = focusedPaneStyle
	}
	width := m.width - 2
	if width < 40 {
		width = 40
	}
	return style.Width(width).Render(strings.Join(rows, "\n"))
}
