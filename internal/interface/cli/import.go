package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/internal/core/export"
	"github.com/neilberkman/tickr/internal/logging"
)

var (
	importReplace bool
	importDryRun  bool
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import entries from a CSV file",
	Long: `Import entries from a CSV file in the format 'tickr export --format csv'
writes. Only activity, elapsed and start columns are required.

Entries whose id already exists are skipped unless --replace is given.
Imported entries are marked unsynced.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Overwrite entries that already exist")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse the file and report without saving")
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() { _ = f.Close() }()

	entries, err := export.ReadCSV(f, time.Now())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := a.logContext(cmd.Context(), "import")
	if _, err := a.store.List(ctx); err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}

	var imported, skipped int
	for _, e := range entries {
		if _, exists := a.store.Get(e.ID); exists && !importReplace {
			skipped++
			continue
		}
		if importDryRun {
			imported++
			continue
		}
		if err := a.store.Import(ctx, e); err != nil {
			return fmt.Errorf("failed to import %s after %d entries: %w", shortID(e.ID), imported, err)
		}
		imported++
	}
	logging.FromContext(ctx).Info().Int("imported", imported).Int("skipped", skipped).Str("file", args[0]).Msg("import finished")

	verb := "Imported"
	if importDryRun {
		verb = "Would import"
	}
	fmt.Printf("%s %d, skipped %d existing\n", verb, imported, skipped)
	return nil
}
