package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AgbodesiImoagene/coingro-controller/core/version"
)

// versionCmd prints the controller version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the controller version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
