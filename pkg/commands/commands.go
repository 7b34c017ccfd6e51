package commands

import (
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/nbook/pkg/commands/options"
)

var (
	output = &options.OutputOptions{}
	logLvl string
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "nbook",
		Short: base.Wrap80("Jupyter notebooks in the terminal."),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if termenv.EnvNoColor() {
				color.NoColor = true
			}
			return loadEnv(logLvl)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	options.AddOutputArg(cmd, output)
	cmd.PersistentFlags().StringVar(&logLvl, "log-level", "",
		"Override the configured log level.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addList(topLevel)
	addCells(topLevel)
	addAdd(topLevel)
	addRemove(topLevel)
	addMove(topLevel)
	addMerge(topLevel)
	addImport(topLevel)
	addExport(topLevel)
	addKernels(topLevel)
	addInfo(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
