package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"bidtest/internal/report"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analyses stored in the database",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of analyses to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if !app.Config.Database.Enabled {
		return errors.New("history requires database.enabled")
	}
	recs, err := app.Repo.ListAnalyses(ctx, historyLimit)
	if err != nil {
		return err
	}
	report.NewPrinter(cmd.OutOrStdout()).History(recs)
	return nil
}
