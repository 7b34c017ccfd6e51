package commands

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/nbook/pkg/kernel"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(nbook completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(nbook completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

func notebookCompletions(toComplete string) []string {
	if err := loadEnv(""); err != nil {
		return nil
	}
	p, err := persistence()
	if err != nil {
		return nil
	}
	var names []string
	for _, n := range p.Notebooks(context.Background()) {
		if strings.HasPrefix(n, toComplete) {
			names = append(names, n)
		}
	}
	return names
}

// notebookArgCompletions completes the first positional argument only.
func notebookArgCompletions(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return notebookCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
}

func kernelFlagCompletions(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if err := loadEnv(""); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	specs, err := kernel.FindSpecs(specDirs())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, n := range kernel.SortedNames(specs) {
		if strings.HasPrefix(n, toComplete) {
			names = append(names, n)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
