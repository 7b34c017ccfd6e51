package merge

import (
	"context"
	"io"

	"tableflip.dev/nbook/pkg/app"
	"tableflip.dev/nbook/pkg/document"
	"tableflip.dev/nbook/pkg/printers"
)

// Merge folds the cell after ID into ID.
type Merge struct {
	Name string
	ID   string

	Service *app.Service
	Out     io.Writer
}

func (n *Merge) Do(ctx context.Context) error {
	st, err := n.Service.Edit(ctx, n.Name, document.MergeCellAfter{ID: n.ID})
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	pp.TitleWithCount(n.Name, st.Document.Len())
	pp.Notebook(st)
	return nil
}
