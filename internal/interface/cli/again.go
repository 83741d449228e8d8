package cli

import (
	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/internal/core/models"
)

var againCmd = &cobra.Command{
	Use:   "again <id>",
	Short: "Start a new session like a past entry",
	Long: `Start the stopwatch with the activity, description and tags of a
past entry. Elapsed time starts from zero; the original entry is untouched.

The id may be any unique prefix shown by 'tickr list'.

Examples:
  tickr again 3f2a9c1e
  tickr again 3f2a`,
	Args: cobra.ExactArgs(1),
	RunE: runAgain,
}

func init() {
	rootCmd.AddCommand(againCmd)
}

func runAgain(cmd *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := a.resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return runStopwatch(cmd.Context(), a, models.TemplateFrom(entry))
}
