package cli

import (
	"github.com/spf13/cobra"

	"enterprise-readiness/internal/app"
)

var (
	exportInput   string
	exportPNGPath string
	exportCSVPath string
	exportTopN    int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ranked scores as CSV and/or PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			Input:   exportInput,
			PNGPath: exportPNGPath,
			CSVPath: exportCSVPath,
			TopN:    exportTopN,
		}
		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "Read accounts from this YAML/JSON file instead of the configured source")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().IntVar(&exportTopN, "top", 0, "Accounts to chart (defaults to config)")
}
