package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/nbook/pkg/runner/info"
	"tableflip.dev/nbook/pkg/runner/kernels"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the configuration and where notebooks are stored.",
		Example: `
nbook info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			p, err := persistence()
			if err != nil {
				return err
			}
			s := info.Info{
				Config:      env.config,
				SpecDirs:    specDirs(),
				Persistence: p,
			}
			err = s.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}

func addKernels(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "kernels",
		Short: "list installed kernel specs",
		Example: `
nbook kernels
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s := kernels.Kernels{
				Dirs:    specDirs(),
				Default: env.config.KernelDefault,
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}
