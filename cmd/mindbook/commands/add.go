package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Capture a note into the memory store",
	Long: `Capture a note. Relative dates in the text ("yesterday", "next friday")
are rewritten to absolute dates, the note is filed under today's date, and
linked to similar existing notes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		status, err := rt.assistant.AddNote(cmd.Context(), rt.owner, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
