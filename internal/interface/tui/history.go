package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/tickr/internal/core/editor"
	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/store"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

type historyItem struct {
	entry models.TimeEntry
}

func (i historyItem) FilterValue() string {
	return i.entry.Activity + " " + i.entry.Description
}

func (i historyItem) Title() string {
	return i.entry.Activity
}

func (i historyItem) Description() string {
	desc := fmt.Sprintf("%s | %s", timefmt.Format(i.entry.Elapsed), humanize.Time(i.entry.Timestamp))
	if i.entry.Description != "" {
		desc += " | " + i.entry.Description
	}
	return desc
}

// Custom delegate to render tags next to the title
type historyDelegate struct {
	list.DefaultDelegate
}

func (d historyDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	h, ok := item.(historyItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := h.Title()
	desc := h.Description()
	if !h.entry.Synced {
		title += " *"
	}

	if index == m.Index() {
		// Selected item
		title = selectedItemStyle.Render("▸ " + title)
		desc = selectedItemStyle.Faint(true).Render("  " + desc)
	} else {
		// Normal item
		title = itemStyle.Render(title)
		desc = itemStyle.Render(timestampStyle.Render(desc))
	}

	if len(h.entry.Tags) > 0 {
		tags := make([]string, len(h.entry.Tags))
		for i, t := range h.entry.Tags {
			tags[i] = "#" + t
		}
		title += " " + tagStyle.Render(strings.Join(tags, " "))
	}

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func createHistoryList(entries []models.TimeEntry, width, height int) list.Model {
	delegate := historyDelegate{DefaultDelegate: list.NewDefaultDelegate()}

	l := list.New(historyItems(entries), delegate, width, height)
	l.Title = ""                 // No title
	l.SetShowStatusBar(false)    // No status bar
	l.SetShowHelp(false)         // No built-in help
	l.SetShowTitle(false)        // No title rendering
	l.SetFilteringEnabled(false) // Disable built-in filter (we have our own with /)

	return l
}

func historyItems(entries []models.TimeEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = historyItem{entry: e}
	}
	return items
}

// refreshHistory rebuilds the list from the store cache and the active filter
func (m *Model) refreshHistory(entries []models.TimeEntry) {
	visible := m.visibleEntries(entries)
	m.list.SetItems(historyItems(visible))
	if n := len(visible); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
}

func (m Model) visibleEntries(entries []models.TimeEntry) []models.TimeEntry {
	f := m.query.Filter
	if m.query.Text == "" {
		return f.Apply(entries)
	}

	if m.search == nil || m.searchHits == nil {
		f.Activity = m.query.Text
		return f.Apply(entries)
	}

	// Keep the cache's order and freshness, but only full-text hits
	hit := make(map[string]bool, len(m.searchHits))
	for _, e := range m.searchHits {
		hit[e.ID] = true
	}
	matched := make([]models.TimeEntry, 0, len(m.searchHits))
	for _, e := range entries {
		if hit[e.ID] {
			matched = append(matched, e)
		}
	}
	return f.Apply(matched)
}

func (m Model) selectedEntry() (models.TimeEntry, bool) {
	item, ok := m.list.SelectedItem().(historyItem)
	if !ok {
		return models.TimeEntry{}, false
	}
	return item.entry, true
}

func (m Model) updateHistory(msg tea.KeyMsg, pendingDelete string) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.shutdown()
		return m, tea.Quit

	case "?":
		m.mode = helpView
		return m, nil

	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, nil

	case "esc":
		if !m.query.Empty() {
			m.query = HistoryQuery{}
			m.searchHits = nil
			m.filterInput.SetValue("")
			m.refreshHistory(m.store.Entries())
		}
		return m, nil

	case "enter", "r":
		e, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		if err := m.reseed(e); err != nil {
			return m, m.showToast("Stop the current session first")
		}
		m.setFocus(focusActivity)
		return m, m.showToast("Ready: " + e.Activity)

	case "a":
		// Start again: reseed, then an explicit start
		e, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		if err := m.reseed(e); err != nil {
			return m, m.showToast("Stop the current session first")
		}
		return m.toggleTimer()

	case "e":
		e, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		m.edit = newEditForm(editor.NewDraft(e), m.now())
		m.mode = editView
		return m, nil

	case "d":
		e, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		if m.store.Deleting() {
			return m, m.showToast("A delete is already in progress")
		}
		if m.confirmDelete && pendingDelete != e.ID {
			m.pendingDelete = e.ID
			return m, m.showToast("Press d again to delete " + e.Activity)
		}
		return m, deleteEntry(m.store, e.ID)

	case "c":
		if e, ok := m.selectedEntry(); ok {
			return m, copyEntry(e)
		}
		return m, nil

	case "ctrl+r":
		return m, loadEntries(m.store)

	case "u":
		if m.holder == nil {
			return m, m.showToast("Accounts are not configured")
		}
		m.authForm = newAuthForm()
		m.mode = authView
		return m, nil

	case "y":
		return m.startSync()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		m.query = ParseHistoryQuery(m.filterInput.Value(), m.now())
		m.searchHits = nil
		m.refreshHistory(m.store.Entries())
		if m.query.Text != "" && m.search != nil {
			return m, searchEntries(m.search, m.query.Text)
		}
		return m, nil

	case "esc":
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m Model) startSync() (tea.Model, tea.Cmd) {
	if m.syncer == nil {
		return m, m.showToast("Sync server is not configured")
	}
	if m.holder == nil || m.holder.Token() == "" {
		return m, m.showToast("Sign in to sync (press u)")
	}
	if m.syncing {
		return m, nil
	}
	m.syncing = true
	return m, runSync(m.syncer, m.holder.Token())
}

func (m Model) viewHistoryHeader() string {
	visible := make([]models.TimeEntry, 0, len(m.list.Items()))
	for _, item := range m.list.Items() {
		if h, ok := item.(historyItem); ok {
			visible = append(visible, h.entry)
		}
	}
	header := titleStyle.Render("History") + timestampStyle.Render(fmt.Sprintf("  %d entries • %s total",
		len(visible), timefmt.Human(store.TotalElapsed(visible))))

	if m.filtering {
		return header + "\n" + m.filterInput.View()
	}
	if !m.query.Empty() {
		header += helpStyle.Render("  filter: " + m.filterInput.Value() + " (esc clears)")
	}
	return header
}
