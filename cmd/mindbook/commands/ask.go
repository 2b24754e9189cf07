package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question against stored notes",
	Long: `Ask a question. Date-anchored questions ("what happened on january 5th")
are answered from the date hierarchy; everything else goes through
similarity search. The answer is grounded in the retrieved notes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		answer, err := rt.assistant.Query(cmd.Context(), rt.owner, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
