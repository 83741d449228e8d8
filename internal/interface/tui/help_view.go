package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key returns to the main view
	m.mode = mainView
	return m, nil
}

func (m Model) viewHelp() string {
	help := `
tickr - Help
════════════

TRACKER
───────
  Type         Edit activity, description or tag (only while not running)
  Enter        Next field; in Tags adds the tag, or starts when empty
  Backspace    In an empty Tags field removes the last tag
  ctrl+s       Start, pause or resume
  ctrl+x       Stop and save the session
  Tab          Cycle focus between fields and history
  esc          Jump to history

HISTORY
───────
  ↑/↓, j/k     Navigate entries
  Enter, r     Prefill the tracker from the entry
  a            Start again with the entry's activity and tags
  e            Edit the entry
  d            Delete the entry
  c            Copy the entry to the clipboard
  /            Filter (text tag:name date:yesterday after:monday before:2025-06-01)
  esc          Clear the filter
  ctrl+r       Reload from the database
  u            Account: sign in, sign up or sign out
  y            Sync with the server
  ?            Show this help
  q            Quit (a running session is saved first)

EDIT ENTRY
──────────
  Tab/↓        Next field
  Enter        Next field, or save on the last one
  ctrl+s       Save
  esc          Cancel

  Start and End accept "2025-06-02 09:30", "09:30" or phrases
  like "yesterday 3pm". Elapsed is recomputed from them.

Entries marked * have not been synced yet.

Press any key to return
`

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 2)

	return box.Render(helpStyle.Render(strings.TrimPrefix(help, "\n")))
}

func (m Model) viewToast() string {
	if m.toastErr {
		return toastErrorStyle.Render(m.toast)
	}
	return toastStyle.Render(m.toast)
}

func (m Model) viewMain() string {
	var b strings.Builder

	header := titleStyle.Render("⏱ tickr")
	if profile := m.viewProfileLine(); profile != "" {
		gap := m.width - lipgloss.Width(header) - lipgloss.Width(profile)
		if gap < 2 {
			gap = 2
		}
		header += strings.Repeat(" ", gap) + profile
	}
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.viewTracker())
	b.WriteString("\n")
	b.WriteString(m.viewHistoryHeader())
	b.WriteString("\n")

	if len(m.list.Items()) == 0 {
		if m.query.Empty() {
			b.WriteString(helpStyle.Render("  No entries yet. Name an activity and press ctrl+s."))
		} else {
			b.WriteString(helpStyle.Render("  Nothing matches the filter."))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(m.list.View())
		b.WriteString("\n")
	}

	switch {
	case m.syncing:
		b.WriteString(helpStyle.Render("⏳ Syncing..."))
	case m.toast != "":
		b.WriteString(m.viewToast())
	}
	b.WriteString("\n")

	var helpText string
	if m.focus == focusHistory {
		helpText = "↑/k up • ↓/j down • a start again • e edit • d delete • / filter • q quit • ? more"
	} else {
		helpText = "ctrl+s start/pause • ctrl+x stop • tab next • esc history"
	}
	b.WriteString(helpStyle.Render(helpText))
	return b.String()
}
