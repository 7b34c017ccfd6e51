package remove

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/nbook/pkg/app"
	"tableflip.dev/nbook/pkg/document"
	"tableflip.dev/nbook/pkg/notebook"
	"tableflip.dev/nbook/pkg/printers"
)

// ErrAborted is returned when the confirmation was declined.
var ErrAborted = errors.New("remove: aborted")

type Remove struct {
	Name string
	ID   string
	// Confirm is asked before removing; nil removes without asking.
	Confirm func(summary string) (bool, error)

	Service *app.Service
	Out     io.Writer
}

func (n *Remove) Do(ctx context.Context) error {
	if n.Service == nil || n.Service.Persistence == nil {
		return errors.New("can not remove, no persistence")
	}
	d, err := n.Service.Persistence.Load(ctx, n.Name)
	if err != nil {
		return err
	}
	c, ok := d.Cell(n.ID)
	if !ok {
		return &notebook.CellError{Kind: notebook.ErrCellNotFound, Op: "remove", ID: n.ID}
	}
	if n.Confirm != nil {
		yes, err := n.Confirm(fmt.Sprintf("%s %s", printers.Prompt(c), c.Summary()))
		if err != nil {
			return err
		}
		if !yes {
			return ErrAborted
		}
	}

	st, err := n.Service.Edit(ctx, n.Name, document.RemoveCell{ID: n.ID})
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	pp.TitleWithCount(n.Name, st.Document.Len())
	pp.Notebook(st)
	return nil
}
