package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one entry in full",
	Long: `Show every field of an entry, including sync state.

The id may be any unique prefix shown by 'tickr list'.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := a.resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:          %s\n", e.ID)
	fmt.Printf("Activity:    %s\n", e.Activity)
	if e.Description != "" {
		fmt.Printf("Description: %s\n", e.Description)
	}
	if len(e.Tags) > 0 {
		fmt.Printf("Tags:        %s\n", models.JoinTags(e.Tags))
	}
	fmt.Printf("Elapsed:     %s (%s)\n", timefmt.Format(e.Elapsed), timefmt.Human(e.Elapsed))
	fmt.Printf("Start:       %s\n", formatTimestamp(e.Timestamp))
	fmt.Printf("End:         %s\n", formatTimestamp(e.End()))
	fmt.Printf("Modified:    %s\n", humanize.Time(e.LastModified))
	if e.Synced {
		fmt.Printf("Synced:      yes (%s)\n", e.SyncID)
	} else {
		fmt.Println("Synced:      no")
	}
	return nil
}
