package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qvx-labs/rqport/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rqport %s (commit %s, built %s)\n",
			version.AppVersion, version.GitCommit, version.BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
