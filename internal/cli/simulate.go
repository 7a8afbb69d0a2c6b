package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"enterprise-readiness/internal/app"
)

var (
	simulateOut      string
	simulateSeed     int64
	simulateAccounts int
	simulatePeriods  int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate a seeded synthetic account dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateAccounts < 0 || simulatePeriods < 0 {
			return errors.New("--accounts and --periods must not be negative")
		}

		opts := app.SimulateOptions{
			Out:      simulateOut,
			Seed:     simulateSeed,
			Accounts: simulateAccounts,
			Periods:  simulatePeriods,
		}
		return getApp().Simulate(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateOut, "out", "", "Write the dataset to this file (stdout when empty)")
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", 0, "Random seed (defaults to config)")
	simulateCmd.Flags().IntVar(&simulateAccounts, "accounts", 0, "Number of accounts (defaults to config)")
	simulateCmd.Flags().IntVar(&simulatePeriods, "periods", 0, "Number of periods per account (defaults to config)")
}
