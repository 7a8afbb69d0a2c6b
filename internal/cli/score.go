package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"enterprise-readiness/internal/app"
)

var (
	scoreInput        string
	scoreLimit        int
	scoreStages       []string
	scoreDistribution bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score every account and print the ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		if scoreLimit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}

		opts := app.ScoreOptions{
			Input:        scoreInput,
			Limit:        scoreLimit,
			Stages:       scoreStages,
			Distribution: scoreDistribution,
		}
		return getApp().Score(cmd.Context(), opts)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreInput, "input", "", "Read accounts from this YAML/JSON file instead of the configured source")
	scoreCmd.Flags().IntVar(&scoreLimit, "limit", 0, "Number of accounts to display (0 shows all)")
	scoreCmd.Flags().StringSliceVar(&scoreStages, "stage", nil, "Only show these stages, e.g. --stage enterprise_ready,high_velocity")
	scoreCmd.Flags().BoolVar(&scoreDistribution, "distribution", true, "Print the stage distribution after the ranking")
}
