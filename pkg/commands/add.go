package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/nbook/pkg/commands/options"
	"tableflip.dev/nbook/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	ao := &options.AddOptions{}
	io := &options.IDOptions{}
	var source string

	cmd := &cobra.Command{
		Use:   "add <notebook> [source...]",
		Short: "add a cell to a notebook",
		Example: `
nbook add analysis 'df = load()'
nbook add analysis --type markdown '# Results'
nbook add analysis --after 3f2a 'df.head()'
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) < 1 {
				return errors.New("requires a notebook")
			}
			source = strings.Join(args[1:], " ")
			return nil
		},
		ValidArgsFunction: notebookArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := ao.GetType()
			if err != nil {
				return err
			}
			svc, err := service()
			if err != nil {
				return err
			}
			s := add.Add{
				Name:    args[0],
				Type:    t,
				Source:  source,
				After:   ao.After,
				ShowID:  io.ShowID,
				Service: svc,
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddCellArgs(cmd, ao)
	options.AddShowIDArgs(cmd, io)
	_ = cmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"code", "markdown", "raw"}, cobra.ShellCompDirectiveNoFileComp
	})
	topLevel.AddCommand(cmd)
}
