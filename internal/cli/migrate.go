package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the analyses table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if !app.Config.Database.Enabled {
			return errors.New("migrate requires database.enabled")
		}
		if err := app.Repo.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migration complete")
		return nil
	},
}
