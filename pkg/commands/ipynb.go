package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/nbook/pkg/runner/ipynb"
)

func addImport(topLevel *cobra.Command) {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file.ipynb>",
		Short: "store a Jupyter notebook file",
		Example: `
nbook import analysis.ipynb
nbook import ~/Downloads/Untitled.ipynb --name scratch
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := service()
			if err != nil {
				return err
			}
			s := ipynb.Import{
				Path:    args[0],
				Name:    name,
				Service: svc,
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&name, "name", "",
		"Store under this name instead of the file name.")
	topLevel.AddCommand(cmd)
}

func addExport(topLevel *cobra.Command) {
	var file string

	cmd := &cobra.Command{
		Use:   "export <notebook>",
		Short: "write a notebook as Jupyter nbformat v4",
		Example: `
nbook export analysis > analysis.ipynb
nbook export analysis --file analysis.ipynb
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: notebookArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := service()
			if err != nil {
				return err
			}
			s := ipynb.Export{
				Name:    args[0],
				Path:    file,
				Service: svc,
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "",
		"Write to this file instead of stdout.")
	topLevel.AddCommand(cmd)
}
