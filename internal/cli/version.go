package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"enterprise-readiness/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and scoring model information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), version.String())
	},
}
