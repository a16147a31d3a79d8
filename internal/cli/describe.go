package cli

import (
	"context"

	"github.com/spf13/cobra"

	"bidtest/internal/abtest"
	"bidtest/internal/model"
	"bidtest/internal/report"
	"bidtest/internal/source"
)

var (
	describeSource string
	describeMetric string
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the data overview of both groups without testing",
	RunE:  runDescribe,
}

func init() {
	describeCmd.Flags().StringVar(&describeSource, "source", "", "dataset source: excel, csv or stream (overrides config)")
	describeCmd.Flags().StringVar(&describeMetric, "metric", "", "metric column to describe (overrides config)")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if describeMetric != "" {
		app.Config.Analysis.Metric = describeMetric
	}
	kind := app.Config.Dataset.Source
	if describeSource != "" {
		kind = describeSource
	}

	metric, err := model.ParseColumn(app.Config.Analysis.Metric)
	if err != nil {
		return err
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
	p := report.NewPrinter(cmd.OutOrStdout())
	p.Overview(engine.Overview(control, metric), metric)
	p.Overview(engine.Overview(test, metric), metric)
	return nil
}
