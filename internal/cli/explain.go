package cli

import (
	"github.com/spf13/cobra"

	"enterprise-readiness/internal/app"
)

var (
	explainInput   string
	explainPNGPath string
)

var explainCmd = &cobra.Command{
	Use:   "explain <account-id>",
	Short: "Show the signal and score breakdown for one account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExplainOptions{
			Input:     explainInput,
			AccountID: args[0],
			PNGPath:   explainPNGPath,
		}
		return getApp().Explain(cmd.Context(), opts)
	},
}

func init() {
	explainCmd.Flags().StringVar(&explainInput, "input", "", "Read accounts from this YAML/JSON file instead of the configured source")
	explainCmd.Flags().StringVar(&explainPNGPath, "png", "", "Path to write a per-channel usage chart")
}
