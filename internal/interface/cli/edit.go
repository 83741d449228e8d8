package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/internal/core/editor"
	"github.com/neilberkman/tickr/internal/logging"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

var (
	editActivity string
	editDesc     string
	editTags     string
	editStart    string
	editEnd      string
	editDuration string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a recorded entry",
	Long: `Edit an entry's fields. Only the flags you pass are changed.

Elapsed time is always recomputed from start and end. --duration moves
the end relative to the (possibly new) start and cannot be combined
with --end.

Examples:
  tickr edit 3f2a --activity "Code review"
  tickr edit 3f2a --tags "work, review"
  tickr edit 3f2a --start 09:15 --end 10:45
  tickr edit 3f2a --duration 1:15:00`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVar(&editActivity, "activity", "", "New activity")
	editCmd.Flags().StringVarP(&editDesc, "desc", "d", "", "New description (empty string clears it)")
	editCmd.Flags().StringVar(&editTags, "tags", "", "Comma separated tags, replacing the current ones")
	editCmd.Flags().StringVar(&editStart, "start", "", "New start time")
	editCmd.Flags().StringVar(&editEnd, "end", "", "New end time")
	editCmd.Flags().StringVar(&editDuration, "duration", "", "New length, measured from start")
	editCmd.MarkFlagsMutuallyExclusive("end", "duration")
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := a.logContext(cmd.Context(), "edit")
	// Load the cache so the update keeps sync identifiers
	if _, err := a.store.List(ctx); err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	entry, err := a.resolve(ctx, args[0])
	if err != nil {
		return err
	}

	ctx = logging.WithEntryID(ctx, entry.ID)
	draft := editor.NewDraft(entry)
	flags := cmd.Flags()
	now := time.Now()

	if flags.Changed("activity") {
		draft.Activity = editActivity
	}
	if flags.Changed("desc") {
		draft.Description = editDesc
	}
	if flags.Changed("tags") {
		draft.TagsInput = editTags
	}
	// Clock-only values ("10:45") fall on the entry's day, not today
	if flags.Changed("start") {
		// Keep the length unless the end is also given
		length := draft.End.Sub(draft.Start)
		if draft.Start, err = editor.ParseTimeOn(editStart, entry.Timestamp.Local(), now); err != nil {
			return fmt.Errorf("invalid --start %q: %w", editStart, err)
		}
		draft.End = draft.Start.Add(length)
	}
	if flags.Changed("end") {
		if draft.End, err = editor.ParseTimeOn(editEnd, draft.Start.Local(), now); err != nil {
			return fmt.Errorf("invalid --end %q: %w", editEnd, err)
		}
	}
	if flags.Changed("duration") {
		secs, err := parseDuration(editDuration)
		if err != nil {
			return err
		}
		draft.End = draft.Start.Add(time.Duration(secs) * time.Second)
	}
	if draft.End.Before(draft.Start) {
		return fmt.Errorf("end %s is before start %s", editor.FormatTime(draft.End.Local()), editor.FormatTime(draft.Start.Local()))
	}

	if err := draft.Save(ctx, a.store); err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	logging.FromContext(ctx).Info().Int64("elapsed", draft.Elapsed()).Msg("entry updated")

	fmt.Printf("Updated %s  %s  %s\n", shortID(draft.ID), timefmt.Format(draft.Elapsed()), draft.Activity)
	return nil
}
