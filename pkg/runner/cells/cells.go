// Package cells prints the cells of a stored notebook.
package cells

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/nbook/pkg/document"
	"tableflip.dev/nbook/pkg/printers"
	"tableflip.dev/nbook/pkg/store"
)

type Cells struct {
	Name        string
	ShowID      bool
	Format      string
	Persistence store.Persistence
	Out         io.Writer
}

func (n *Cells) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not list cells, no persistence")
	}
	d, err := n.Persistence.Load(ctx, n.Name)
	if err != nil {
		return err
	}
	st := document.NewState(d)

	out := n.Out
	if out == nil {
		out = color.Output
	}
	if n.Format != "" {
		return printers.Encode(out, n.Format, printers.Rows(st))
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: out}
	pp.NewLine()
	pp.TitleWithCount(n.Name, d.Len())
	pp.Notebook(st)
	return nil
}
