// Package notebooks lists stored notebooks.
package notebooks

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/nbook/pkg/printers"
	"tableflip.dev/nbook/pkg/store"
)

type List struct {
	Persistence store.Persistence
	Out         io.Writer
}

func (n *List) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not list, no persistence")
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.NewLine()
	pp.Title("Notebooks")
	pp.Notebooks(n.Persistence.Notebooks(ctx))
	return nil
}
