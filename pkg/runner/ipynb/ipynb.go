// Package ipynb moves notebooks between the store and Jupyter .ipynb files.
package ipynb

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/nbook/pkg/app"
)

// Import stores the .ipynb file at Path.
type Import struct {
	Path string
	// Name defaults to the file name without its extension.
	Name    string
	Service *app.Service
	Out     io.Writer
}

func (n *Import) Do(ctx context.Context) error {
	name, err := n.Service.Import(ctx, n.Path, n.Name)
	if err != nil {
		return err
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintf(out, "imported %s as %s\n", n.Path, color.New(color.Bold).Sprint(name))
	return nil
}

// Export writes a stored notebook as nbformat v4 JSON to Path, or to Out
// when Path is empty.
type Export struct {
	Name    string
	Path    string
	Service *app.Service
	Out     io.Writer
}

func (n *Export) Do(ctx context.Context) error {
	data, err := n.Service.Export(ctx, n.Name)
	if err != nil {
		return err
	}
	if n.Path != "" {
		return os.WriteFile(n.Path, append(data, '\n'), 0o644)
	}
	out := n.Out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
