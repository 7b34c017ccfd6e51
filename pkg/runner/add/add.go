package add

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/nbook/pkg/app"
	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/document"
	"tableflip.dev/nbook/pkg/printers"
)

// Add inserts a cell into a stored notebook.
type Add struct {
	Name   string
	Type   cell.Type
	Source string
	// After is the cell the new one follows. Empty appends.
	After string

	ShowID  bool
	Service *app.Service
	Out     io.Writer
}

func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil || n.Service.Persistence == nil {
		return errors.New("can not add, no persistence")
	}
	after := n.After
	if after == "" {
		d, err := n.Service.Persistence.Load(ctx, n.Name)
		if err != nil {
			return err
		}
		after, _ = d.At(d.Len() - 1)
	}

	st, err := n.Service.Edit(ctx, n.Name, document.NewCellAfter{ID: after, Type: n.Type, Source: n.Source})
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.TitleWithCount(n.Name, st.Document.Len())
	pp.Notebook(st)
	return nil
}
