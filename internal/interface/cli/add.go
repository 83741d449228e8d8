package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/internal/core/editor"
	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/store"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

var (
	addDuration string
	addAt       string
	addDesc     string
	addTags     []string
)

var addCmd = &cobra.Command{
	Use:   "add <activity>",
	Short: "Record a session after the fact",
	Long: `Add a completed entry without running the stopwatch.

--duration accepts 90, 1:30 (m:ss), 1:02:03 (h:mm:ss) or Go durations
like 1h30m. --at is when the session began and defaults to now minus
the duration.

Examples:
  tickr add "Client call" --duration 45m
  tickr add Gardening --duration 1:30:00 --at "yesterday 3pm" --tag home`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addDuration, "duration", "", "Length of the session (required)")
	addCmd.Flags().StringVar(&addAt, "at", "", "When the session began")
	addCmd.Flags().StringVarP(&addDesc, "desc", "d", "", "Description")
	addCmd.Flags().StringSliceVarP(&addTags, "tag", "t", nil, "Tag (repeatable or comma separated)")
	_ = addCmd.MarkFlagRequired("duration")
}

// parseDuration reads clock notation or a Go duration into whole seconds
func parseDuration(s string) (int64, error) {
	if secs, err := timefmt.ParseClock(s); err == nil {
		return secs, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q is negative", s)
	}
	return int64(d / time.Second), nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	elapsed, err := parseDuration(addDuration)
	if err != nil {
		return err
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	var startedAt time.Time
	if addAt != "" {
		startedAt, err = editor.ParseTime(addAt, time.Now())
		if err != nil {
			return fmt.Errorf("invalid --at %q: %w", addAt, err)
		}
	}

	tags := []string{}
	for _, t := range addTags {
		tags, _ = models.AddTag(tags, t)
	}

	entry, err := a.store.Append(cmd.Context(), models.Completed{
		Activity:    strings.TrimSpace(strings.Join(args, " ")),
		Description: strings.TrimSpace(addDesc),
		Tags:        tags,
		Elapsed:     elapsed,
		StartedAt:   startedAt,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotPersistable) {
			return errors.New("an entry needs an activity and a duration above zero")
		}
		return fmt.Errorf("failed to add entry: %w", err)
	}

	fmt.Printf("Added %s  %s  %s\n", shortID(entry.ID), timefmt.Format(entry.Elapsed), entry.Activity)
	return nil
}
