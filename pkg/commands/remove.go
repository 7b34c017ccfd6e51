package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/nbook/pkg/commands/options"
	"tableflip.dev/nbook/pkg/runner/remove"
)

func addRemove(topLevel *cobra.Command) {
	co := &options.ConfirmOptions{}

	cmd := &cobra.Command{
		Use:     "rm <notebook> <cell-id>",
		Aliases: []string{"remove"},
		Short:   "remove a cell from a notebook",
		Example: `
nbook rm analysis 3f2a
nbook rm analysis 3f2a --yes
`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: notebookArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := service()
			if err != nil {
				return err
			}
			s := remove.Remove{
				Name:    args[0],
				ID:      args[1],
				Service: svc,
			}
			if !co.Yes {
				s.Confirm = func(summary string) (bool, error) {
					return confirm(cmd, fmt.Sprintf("Remove %s", summary))
				}
			}
			err = s.Do(cmd.Context())
			if errors.Is(err, remove.ErrAborted) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing removed.")
				return nil
			}
			return output.HandleError(err)
		},
	}

	options.AddConfirmArgs(cmd, co)
	topLevel.AddCommand(cmd)
}
