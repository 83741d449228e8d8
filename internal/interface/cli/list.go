package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/internal/core/editor"
	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/store"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

var (
	listLimit    int
	listTag      string
	listActivity string
	listSince    string
	listUntil    string
	listUnsynced bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries",
	Long: `List recorded entries, newest first.

--since and --until accept dates, times or phrases like "monday" or
"yesterday". --until is exclusive.

Examples:
  tickr list
  tickr list --limit 10
  tickr list --tag work --since monday
  tickr list --activity review --until 2025-06-01`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of entries to display (0 for all)")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Only entries with this tag")
	listCmd.Flags().StringVar(&listActivity, "activity", "", "Only activities containing this text")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only entries started at or after this time")
	listCmd.Flags().StringVar(&listUntil, "until", "", "Only entries started before this time")
	listCmd.Flags().BoolVar(&listUnsynced, "unsynced", false, "Only entries not yet synced")
}

// buildFilter turns the shared filter flags into a store filter
func buildFilter(tag, activity, since, until string, limit int, now time.Time) (store.Filter, error) {
	f := store.Filter{Tag: tag, Activity: activity, Limit: limit}
	if since != "" {
		t, err := editor.ParseTime(since, now)
		if err != nil {
			return f, fmt.Errorf("invalid --since %q: %w", since, err)
		}
		f.Since = t
	}
	if until != "" {
		t, err := editor.ParseTime(until, now)
		if err != nil {
			return f, fmt.Errorf("invalid --until %q: %w", until, err)
		}
		f.Until = t
	}
	return f, nil
}

func runList(cmd *cobra.Command, args []string) error {
	filter, err := buildFilter(listTag, listActivity, listSince, listUntil, 0, time.Now())
	if err != nil {
		return err
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	var entries []models.TimeEntry
	if listUnsynced {
		entries, err = a.db.GetUnsyncedEntries(cmd.Context())
	} else {
		entries, err = a.store.List(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	entries = filter.Apply(entries)
	total := store.TotalElapsed(entries)

	// Apply limit (interface concern - pagination)
	shown := entries
	if listLimit > 0 && len(shown) > listLimit {
		shown = shown[:listLimit]
	}

	if len(shown) == 0 {
		fmt.Println("No entries found. Run 'tickr start <activity>' to record one.")
		return nil
	}

	fmt.Printf("Showing %d of %d entries (%s total)\n\n", len(shown), len(entries), timefmt.Human(total))
	printEntries(shown)
	return nil
}

func printEntries(entries []models.TimeEntry) {
	for i, e := range entries {
		fmt.Printf("[%d] %s  %s  %s\n", i+1, shortID(e.ID), timefmt.Format(e.Elapsed), e.Activity)
		if e.Description != "" {
			fmt.Printf("    Description: %s\n", truncate(e.Description, 80))
		}
		if len(e.Tags) > 0 {
			fmt.Printf("    Tags: %s\n", models.JoinTags(e.Tags))
		}
		fmt.Printf("    Started: %s (%s)\n", formatTimestamp(e.Timestamp), humanize.Time(e.Timestamp))
		fmt.Println()
	}
}

// truncate shortens long text for display
func truncate(s string, maxLen int) string {
	// Remove newlines and excessive whitespace
	s = strings.Join(strings.Fields(s), " ")

	if len(s) <= maxLen {
		return s
	}

	// Find a good break point (end of word)
	truncated := s[:maxLen]
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > maxLen-20 {
		truncated = truncated[:lastSpace]
	}

	return truncated + "..."
}

// formatTimestamp shows the local date, dropping the year when it is the current one
func formatTimestamp(t time.Time) string {
	t = t.Local()
	if t.Year() == time.Now().Year() {
		return t.Format("Mon Jan 2 15:04")
	}
	return t.Format("Mon Jan 2, 2006 15:04")
}
