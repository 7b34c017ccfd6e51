package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/nbook/pkg/runner/merge"
	"tableflip.dev/nbook/pkg/runner/move"
)

func addMove(topLevel *cobra.Command) {
	var above bool

	cmd := &cobra.Command{
		Use:     "mv <notebook> <cell-id> <anchor-id>",
		Aliases: []string{"move"},
		Short:   "move a cell next to another cell",
		Example: `
nbook mv analysis 3f2a 9c1e
nbook mv analysis 3f2a 9c1e --above
`,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: notebookArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := service()
			if err != nil {
				return err
			}
			s := move.Move{
				Name:    args[0],
				ID:      args[1],
				Anchor:  args[2],
				Above:   above,
				Service: svc,
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&above, "above", false,
		"Place the cell above the anchor instead of below it.")
	topLevel.AddCommand(cmd)
}

func addMerge(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "merge <notebook> <cell-id>",
		Short: "merge the following cell into a cell",
		Example: `
nbook merge analysis 3f2a
`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: notebookArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := service()
			if err != nil {
				return err
			}
			s := merge.Merge{
				Name:    args[0],
				ID:      args[1],
				Service: svc,
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}
