package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search entries using full-text search",
	Long: `Search activities and descriptions.

Uses FTS5 full-text search with porter stemming; every word is matched
as a prefix.

Examples:
  tickr search review
  tickr search "client call" --limit 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum number of entries to show")
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Join all args as query
	query := strings.Join(args, " ")

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.db.SearchTimeEntries(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(entries) == 0 {
		fmt.Printf("No entries match %q\n", query)
		return nil
	}

	fmt.Printf("Found %d entries matching %q\n\n", len(entries), query)
	printEntries(entries)
	return nil
}
