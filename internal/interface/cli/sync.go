package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/internal/logging"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync entries with the server",
	Long: `Push unsynced entries to the sync server and pull entries recorded
elsewhere. Requires sync.server_url in config.toml and a signed-in
account ('tickr auth signin').`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	syncer := a.syncer()
	if syncer == nil {
		return errors.New("sync.server_url is not configured (see 'tickr config path')")
	}

	ctx := a.logContext(cmd.Context(), "sync")
	session, err := a.auth.Restore(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if session == nil {
		return errors.New("not signed in: run 'tickr auth signin' first")
	}

	fmt.Printf("Syncing as %s with %s\n", session.User.Email, a.cfg.Sync.ServerURL)
	res, err := syncer.Sync(ctx, a.auth.Token())
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("sync failed")
		return fmt.Errorf("sync failed: %w", err)
	}
	logging.FromContext(ctx).Info().
		Int("pushed", res.Pushed).
		Int("pulled", res.Pulled).
		Int("marked", res.Marked).
		Msg("sync finished")

	fmt.Printf("Pushed:  %d\n", res.Pushed)
	fmt.Printf("Pulled:  %d\n", res.Pulled)
	fmt.Printf("Marked:  %d\n", res.Marked)
	return nil
}
