package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/neilberkman/tickr/internal/core/db"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show tracking statistics",
	Long: `Display totals for today, the last seven days and all time, the most
tracked activity and tag, sync state and storage info.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		stats *db.Stats
		size  int64
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		s, err := a.db.GetStats(ctx, today)
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}
		stats = s
		return nil
	})
	g.Go(func() error {
		// Database file size, WAL included
		for _, p := range []string{a.db.Path(), a.db.Path() + "-wal"} {
			info, err := os.Stat(p)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return fmt.Errorf("failed to stat database file: %w", err)
			}
			size += info.Size()
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println("Tracking Statistics")
	fmt.Println("===================")
	fmt.Println()

	fmt.Printf("Total Entries:     %s\n", humanize.Comma(int64(stats.TotalEntries)))
	fmt.Printf("Total Tracked:     %s\n", timefmt.Human(stats.TotalSeconds))
	fmt.Printf("Today:             %s\n", timefmt.Human(stats.TodaySeconds))
	fmt.Printf("Last 7 Days:       %s\n", timefmt.Human(stats.LastSevenDaysSecs))
	fmt.Println()

	if stats.TotalEntries > 0 {
		fmt.Printf("Oldest Entry:      %s (%s)\n", stats.OldestEntry.Local().Format("Jan 2, 2006 3:04 PM"), humanize.Time(stats.OldestEntry))
		fmt.Printf("Newest Entry:      %s (%s)\n", stats.NewestEntry.Local().Format("Jan 2, 2006 3:04 PM"), humanize.Time(stats.NewestEntry))
		fmt.Println()

		if stats.TopActivity != "" {
			fmt.Printf("Most Tracked Activity:\n")
			fmt.Printf("  Name:     %s\n", stats.TopActivity)
			fmt.Printf("  Time:     %s\n", timefmt.Human(stats.TopActivitySecs))
			fmt.Println()
		}
		if stats.TopTag != "" {
			fmt.Printf("Most Used Tag:     %s (%s)\n", stats.TopTag, humanize.Comma(int64(stats.TopTagCount))+" entries")
			fmt.Println()
		}
	}

	fmt.Printf("Unsynced Entries:  %s\n", humanize.Comma(int64(stats.UnsyncedEntries)))
	fmt.Printf("Database Location: %s\n", a.db.Path())
	fmt.Printf("Database Size:     %s\n", humanize.Bytes(uint64(size)))

	return nil
}
