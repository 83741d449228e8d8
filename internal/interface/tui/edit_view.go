package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/tickr/internal/core/editor"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

const (
	editActivity = iota
	editDescription
	editTags
	editStart
	editEnd
	editFieldCount
)

var editLabels = [editFieldCount]string{"Activity", "Description", "Tags", "Start", "End"}

type editForm struct {
	draft     editor.Draft
	inputs    []textinput.Model
	focus     int
	day       time.Time // clock-only start values land on the entry's own day
	now       time.Time
	fieldErrs map[int]string
	err       error
}

func newEditForm(d editor.Draft, now time.Time) editForm {
	f := editForm{
		draft:     d,
		day:       d.Start.Local(),
		now:       now,
		inputs:    make([]textinput.Model, editFieldCount),
		fieldErrs: map[int]string{},
	}
	values := [editFieldCount]string{
		d.Activity,
		d.Description,
		d.TagsInput,
		editor.FormatTime(d.Start.Local()),
		editor.FormatTime(d.End.Local()),
	}
	placeholders := [editFieldCount]string{
		"Activity",
		"Description (optional)",
		"comma, separated, tags",
		"2006-01-02 15:04:05, 09:30 or 'yesterday 3pm'",
		"2006-01-02 15:04:05, 10:45 or '10 minutes ago'",
	}
	for i := range f.inputs {
		f.inputs[i] = newInput(placeholders[i], 500)
		f.inputs[i].SetValue(values[i])
	}
	f.inputs[editActivity].Focus()
	return f
}

// apply copies the inputs into the draft and records fields that do not parse
func (f *editForm) apply() {
	f.fieldErrs = map[int]string{}
	f.err = nil

	f.draft.Activity = f.inputs[editActivity].Value()
	f.draft.Description = f.inputs[editDescription].Value()
	f.draft.TagsInput = f.inputs[editTags].Value()
	if strings.TrimSpace(f.draft.Activity) == "" {
		f.fieldErrs[editActivity] = editor.ErrBlankActivity.Error()
	}

	endDay := f.day
	if t, err := editor.ParseTimeOn(f.inputs[editStart].Value(), f.day, f.now); err != nil {
		f.fieldErrs[editStart] = err.Error()
	} else {
		f.draft.Start = t
		endDay = t.Local()
	}
	// A clock-only end belongs to the day the entry starts on
	if t, err := editor.ParseTimeOn(f.inputs[editEnd].Value(), endDay, f.now); err != nil {
		f.fieldErrs[editEnd] = err.Error()
	} else {
		f.draft.End = t
	}
}

func (f *editForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + editFieldCount) % editFieldCount
	f.inputs[f.focus].Focus()
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = mainView
		return m, nil

	case "tab", "down":
		m.edit.setFocus(m.edit.focus + 1)
		return m, nil

	case "shift+tab", "up":
		m.edit.setFocus(m.edit.focus - 1)
		return m, nil

	case "enter":
		if m.edit.focus < editFieldCount-1 {
			m.edit.setFocus(m.edit.focus + 1)
			return m, nil
		}
		return m.submitEdit()

	case "ctrl+s":
		return m.submitEdit()
	}

	var cmd tea.Cmd
	m.edit.inputs[m.edit.focus], cmd = m.edit.inputs[m.edit.focus].Update(msg)
	m.edit.apply()
	return m, cmd
}

func (m Model) submitEdit() (tea.Model, tea.Cmd) {
	m.edit.apply()
	if len(m.edit.fieldErrs) > 0 {
		return m, nil
	}
	if err := m.edit.draft.Validate(); err != nil {
		m.edit.err = err
		return m, nil
	}
	return m, saveDraft(m.store, m.edit.draft)
}

func (m Model) viewEdit() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Edit entry"))
	b.WriteString("\n\n")

	for i, input := range m.edit.inputs {
		b.WriteString(labelStyle.Render(editLabels[i]))
		b.WriteString(input.View())
		b.WriteString("\n")
		if msg, ok := m.edit.fieldErrs[i]; ok {
			b.WriteString(labelStyle.Render(""))
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Elapsed"))
	b.WriteString(clockStyle.UnsetPadding().Render(timefmt.Format(m.edit.draft.Elapsed())))
	if m.edit.draft.End.Before(m.edit.draft.Start) {
		b.WriteString(errorStyle.Render("  end is before start"))
	}
	b.WriteString("\n")

	if m.edit.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.edit.err.Error()) + "\n")
	}
	if m.toast != "" {
		b.WriteString("\n" + m.viewToast() + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab/↓ next • shift+tab/↑ prev • enter/ctrl+s save • esc cancel"))
	return b.String()
}
