package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bidtest/internal/abtest"
	"bidtest/internal/report"
	"bidtest/internal/source"
)

var (
	analyzeJSON   bool
	analyzeSource string
	analyzeMetric string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the A/B test on the configured dataset",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
	analyzeCmd.Flags().StringVar(&analyzeSource, "source", "", "dataset source: excel, csv or stream (overrides config)")
	analyzeCmd.Flags().StringVar(&analyzeMetric, "metric", "", "metric column to compare (overrides config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if analyzeMetric != "" {
		app.Config.Analysis.Metric = analyzeMetric
	}
	kind := app.Config.Dataset.Source
	if analyzeSource != "" {
		kind = analyzeSource
	}

	src, err := source.NewSource(kind, app.Logger, &app.Config)
	if err != nil {
		return err
	}
	control, test, err := src.Load(ctx)
	if err != nil {
		return err
	}

	engine := abtest.NewEngine(app.Logger, app.Repo, app.Archiver, &app.Config)
	rep, err := engine.Run(ctx, src.Name(), control, test)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		return report.WriteJSON(out, rep)
	}
	report.NewPrinter(out).Report(rep)
	return nil
}
