package commands

import (
	"errors"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// selectNotebook asks which stored notebook to open. The last entry names a
// new notebook.
func selectNotebook(cmd *cobra.Command, names []string) (string, error) {
	const newNotebook = "+ new notebook"
	items := append(append([]string{}, names...), newNotebook)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ . | cyan }}",
		Inactive: "   {{ . }}",
		Selected: "➜  {{ . | bold }}",
	}

	searcher := func(input string, index int) bool {
		name := strings.Replace(strings.ToLower(items[index]), " ", "", -1)
		input = strings.Replace(strings.ToLower(input), " ", "", -1)

		return strings.Contains(name, input)
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     "Notebook",
		Items:     items,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    nopCloser{cmd.OutOrStdout()},
	}

	_, picked, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if picked != newNotebook {
		return picked, nil
	}

	name := promptui.Prompt{
		Label: "Name",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("name is required")
			}
			return nil
		},
		Stdin:  io.NopCloser(cmd.InOrStdin()),
		Stdout: nopCloser{cmd.OutOrStdout()},
	}
	result, err := name.Run()
	return strings.TrimSpace(result), err
}

// confirm asks a yes/no question. Anything but yes is a no.
func confirm(cmd *cobra.Command, label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    nopCloser{cmd.OutOrStdout()},
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
