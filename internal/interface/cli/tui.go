package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/timer"
	"github.com/neilberkman/tickr/internal/core/watch"
	"github.com/neilberkman/tickr/internal/interface/tui"
)

var tuiAgain string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive tracker",
	Long: `Launch the interactive terminal UI: a stopwatch with activity,
description and tags on top, your history below.

Examples:
  tickr
  tickr tui --again 3f2a9c1e`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVar(&tuiAgain, "again", "", "Start immediately with the activity and tags of this entry")
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var intent timer.Intent
	if tuiAgain != "" {
		entry, err := a.resolve(ctx, tuiAgain)
		if err != nil {
			return err
		}
		tmpl := models.TemplateFrom(entry)
		intent = timer.Intent{Template: &tmpl, AutoStart: true}
	}

	// Refresh when another tickr process writes the database
	watcher, err := watch.New(a.cfg.DBPath, watch.DefaultDebounce, a.log)
	if err != nil {
		a.log.Warn().Err(err).Msg("database watcher unavailable")
	} else {
		defer func() { _ = watcher.Close() }()
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Warn().Err(err).Msg("database watcher stopped")
			}
		}()
	}

	model := tui.New(tui.Options{
		Store:         a.store,
		Auth:          a.auth,
		Syncer:        a.syncer(),
		Search:        a.db.SearchTimeEntries,
		Watcher:       watcher,
		Intent:        intent,
		ConfirmDelete: a.cfg.UI.ConfirmDelete,
		DefaultTags:   a.cfg.UI.DefaultTags,
		Logger:        a.log,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	if m, ok := finalModel.(tui.Model); ok {
		m.Engine().Close()
	}
	return nil
}
