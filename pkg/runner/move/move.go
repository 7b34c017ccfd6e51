package move

import (
	"context"
	"io"

	"tableflip.dev/nbook/pkg/app"
	"tableflip.dev/nbook/pkg/document"
	"tableflip.dev/nbook/pkg/printers"
)

// Move places a cell directly below, or above, an anchor cell.
type Move struct {
	Name   string
	ID     string
	Anchor string
	Above  bool

	Service *app.Service
	Out     io.Writer
}

func (n *Move) Do(ctx context.Context) error {
	st, err := n.Service.Edit(ctx, n.Name, document.MoveCell{ID: n.ID, DestinationID: n.Anchor, Above: n.Above})
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	pp.TitleWithCount(n.Name, st.Document.Len())
	pp.Notebook(st)
	return nil
}
