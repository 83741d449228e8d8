package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/internal/logging"
	"github.com/neilberkman/tickr/pkg/timefmt"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an entry",
	Long: `Delete an entry permanently.

Asks for confirmation unless --yes is given or ui.confirm_delete is false.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := a.logContext(cmd.Context(), "delete")
	entry, err := a.resolve(ctx, args[0])
	if err != nil {
		return err
	}
	ctx = logging.WithEntryID(ctx, entry.ID)

	if a.cfg.UI.ConfirmDelete && !deleteYes {
		question := fmt.Sprintf("Delete %s %q (%s)?", shortID(entry.ID), entry.Activity, timefmt.Human(entry.Elapsed))
		if !confirm(os.Stdin, os.Stdout, question) {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := a.store.Remove(ctx, entry.ID); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	logging.FromContext(ctx).Info().Msg("entry deleted")
	fmt.Printf("Deleted %s\n", shortID(entry.ID))
	return nil
}

// confirm asks a yes/no question; anything but y or yes means no
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
