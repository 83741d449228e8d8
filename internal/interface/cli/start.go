package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/store"
	"github.com/neilberkman/tickr/internal/core/timer"
	"github.com/neilberkman/tickr/internal/interface/tui"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

var (
	startDesc string
	startTags []string
)

var startCmd = &cobra.Command{
	Use:   "start <activity>",
	Short: "Run a stopwatch in the terminal",
	Long: `Start timing an activity right away with a one-line stopwatch.

Press p to pause or resume, s (or ctrl+c) to stop and save, x to discard.

Examples:
  tickr start Writing docs
  tickr start "Code review" --tag work --tag review
  tickr start Standup -d "daily sync"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().StringVarP(&startDesc, "desc", "d", "", "Description")
	startCmd.Flags().StringSliceVarP(&startTags, "tag", "t", nil, "Tag (repeatable or comma separated)")
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	tags := []string{}
	for _, t := range append(append([]string{}, a.cfg.UI.DefaultTags...), startTags...) {
		tags, _ = models.AddTag(tags, t)
	}
	tmpl := models.Template{
		Activity:    strings.Join(args, " "),
		Description: startDesc,
		Tags:        tags,
	}
	return runStopwatch(cmd.Context(), a, tmpl)
}

// runStopwatch starts the template immediately and saves what the user stops
func runStopwatch(ctx context.Context, a *app, tmpl models.Template) error {
	engine := timer.New(
		timer.Intent{Template: &tmpl, AutoStart: true},
		timer.WithSessionStarted(func() {
			a.log.Info().Str("activity", tmpl.Activity).Msg("session started")
		}),
	)
	defer engine.Close()

	if !engine.Snapshot().IsRunning() {
		return errors.New("activity must not be blank")
	}

	finalModel, err := tea.NewProgram(tui.NewStopwatch(engine), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("error running stopwatch: %w", err)
	}
	sw, ok := finalModel.(tui.Stopwatch)
	if !ok {
		return nil
	}

	done, save := sw.Result()
	if !save {
		fmt.Println("Nothing saved.")
		return nil
	}
	entry, err := a.store.Append(ctx, done)
	if err != nil {
		if errors.Is(err, store.ErrNotPersistable) {
			fmt.Println("Nothing saved.")
			return nil
		}
		return fmt.Errorf("failed to save entry: %w", err)
	}
	fmt.Printf("Saved %s  %s  %s\n", shortID(entry.ID), timefmt.Format(entry.Elapsed), entry.Activity)
	return nil
}
