package commands

import (
	"fmt"
	goruntime "runtime"

	"github.com/spf13/cobra"

	"github.com/mindbook/mindbook/cmd/mindbook/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(build.String())
		if verbose {
			fmt.Printf("  go: %s\n", goruntime.Version())
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
