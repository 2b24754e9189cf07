package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var wipeCmd = &cobra.Command{
	Use:   "wipe <confirmation>",
	Short: "Delete all stored data",
	Long: `Delete every note, date marker, and relation for every user.

The confirmation argument must be the literal word "delete"; anything
else cancels the operation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		msg, err := rt.assistant.DeleteAllData(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wipeCmd)
}
