package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "1.2.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the taskviewer version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("taskviewer %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
