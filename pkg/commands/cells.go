package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/nbook/pkg/commands/options"
	"tableflip.dev/nbook/pkg/runner/cells"
	"tableflip.dev/nbook/pkg/runner/notebooks"
)

func addList(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list stored notebooks",
		Example: `
nbook list
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			p, err := persistence()
			if err != nil {
				return err
			}
			s := notebooks.List{Persistence: p}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}

func addCells(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	fo := &options.FormatOptions{}

	cmd := &cobra.Command{
		Use:   "cells <notebook>",
		Short: "print the cells of a notebook",
		Example: `
nbook cells analysis
nbook cells analysis -k
nbook cells analysis -o yaml
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: notebookArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			p, err := persistence()
			if err != nil {
				return err
			}
			s := cells.Cells{
				Name:        args[0],
				ShowID:      io.ShowID,
				Format:      fo.Format,
				Persistence: p,
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddFormatArg(cmd, fo)
	topLevel.AddCommand(cmd)
}
