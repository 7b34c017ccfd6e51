package commands

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/nbook/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	var kernelName string

	cmd := &cobra.Command{
		Use:   "ui [notebook]",
		Short: "open a notebook in the text-based user interface",
		Example: `
nbook ui analysis
nbook ui analysis --kernel python3
nbook ui
`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: notebookArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if !isatty.IsTerminal(os.Stdout.Fd()) || !isatty.IsTerminal(os.Stdin.Fd()) {
				return errors.New("ui needs an interactive terminal")
			}
			svc, err := service()
			if err != nil {
				return err
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			} else {
				names, err := svc.Notebooks(cmd.Context())
				if err != nil {
					return err
				}
				if name, err = selectNotebook(cmd, names); err != nil {
					return err
				}
			}

			i := ui.UI{
				Name:    name,
				Kernel:  kernelName,
				Service: svc,
				Log:     env.log,
			}
			return i.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&kernelName, "kernel", "",
		"Start this kernel spec once the notebook is open.")
	_ = cmd.RegisterFlagCompletionFunc("kernel", kernelFlagCompletions)

	topLevel.AddCommand(cmd)
}
