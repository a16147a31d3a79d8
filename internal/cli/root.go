package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "bidtest",
	Short: "A/B test of bidding strategies",
	Long: `bidtest compares a control and a test group of ad campaign data.

It checks the normality and variance homogeneity assumptions and then
tests whether the mean of the chosen metric differs between the groups.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(migrateCmd)
}
