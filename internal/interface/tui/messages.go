package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/neilberkman/tickr/internal/core/auth"
	"github.com/neilberkman/tickr/internal/core/editor"
	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/remotesync"
	"github.com/neilberkman/tickr/internal/core/store"
	"github.com/neilberkman/tickr/internal/core/watch"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

// callTimeout bounds every backend or auth call made from the UI
const callTimeout = 30 * time.Second

type tickMsg struct {
	gen int
}

type toastExpiredMsg struct {
	id int
}

type bootstrapMsg struct {
	entries []models.TimeEntry
	session *auth.Session
	err     error
}

type entriesLoadedMsg struct {
	entries []models.TimeEntry
	err     error
}

type entrySavedMsg struct {
	entry models.TimeEntry
	err   error
}

type entryDeletedMsg struct {
	id  string
	err error
}

type entryUpdatedMsg struct {
	id  string
	err error
}

type authDoneMsg struct {
	action  string
	session *auth.Session
	err     error
}

type syncDoneMsg struct {
	result remotesync.Result
	err    error
}

type dbChangedMsg struct{}

type copiedMsg struct {
	err error
}

type searchResultsMsg struct {
	query   string
	entries []models.TimeEntry
	err     error
}

// Searcher is full-text search over activity and description
type Searcher func(ctx context.Context, query string, limit int) ([]models.TimeEntry, error)

func tick(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func expireToast(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// bootstrap loads history and restores a saved sign-in in parallel
func bootstrap(s *store.Store, holder *auth.Holder) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		var msg bootstrapMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			entries, err := s.List(gctx)
			msg.entries = entries
			return err
		})
		if holder != nil {
			g.Go(func() error {
				// A failed restore only means starting signed out
				msg.session, _ = holder.Restore(gctx)
				return nil
			})
		}
		msg.err = g.Wait()
		return msg
	}
}

func loadEntries(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		entries, err := s.List(ctx)
		return entriesLoadedMsg{entries: entries, err: err}
	}
}

func saveCompleted(s *store.Store, c models.Completed) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		entry, err := s.Append(ctx, c)
		return entrySavedMsg{entry: entry, err: err}
	}
}

func deleteEntry(s *store.Store, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return entryDeletedMsg{id: id, err: s.Remove(ctx, id)}
	}
}

func saveDraft(s *store.Store, d editor.Draft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return entryUpdatedMsg{id: d.ID, err: d.Save(ctx, s)}
	}
}

func signIn(h *auth.Holder, req auth.SignInRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		s, err := h.SignIn(ctx, req)
		return authDoneMsg{action: "signin", session: s, err: err}
	}
}

func signUp(h *auth.Holder, req auth.SignUpRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		s, err := h.SignUp(ctx, req)
		return authDoneMsg{action: "signup", session: s, err: err}
	}
}

func signOut(h *auth.Holder) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return authDoneMsg{action: "signout", err: h.SignOut(ctx)}
	}
}

func runSync(syncer *remotesync.Syncer, token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		res, err := syncer.Sync(ctx, token)
		return syncDoneMsg{result: res, err: err}
	}
}

func searchEntries(search Searcher, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		entries, err := search(ctx, query, 200)
		return searchResultsMsg{query: query, entries: entries, err: err}
	}
}

// waitForChange blocks until another process writes the database
func waitForChange(w *watch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		<-w.Changes()
		return dbChangedMsg{}
	}
}

func copyEntry(e models.TimeEntry) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(entryLine(e))}
	}
}

// entryLine is the plain-text form used for the clipboard
func entryLine(e models.TimeEntry) string {
	line := e.Timestamp.Local().Format("2006-01-02 15:04") + "  " + timefmt.Format(e.Elapsed) + "  " + e.Activity
	if e.Description != "" {
		line += " - " + e.Description
	}
	if len(e.Tags) > 0 {
		line += " [" + models.JoinTags(e.Tags) + "]"
	}
	return line
}
