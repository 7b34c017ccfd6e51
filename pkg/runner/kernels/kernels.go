// Package kernels provides CLI helpers to display installed kernel specs.
package kernels

import (
	"context"
	"io"

	"tableflip.dev/nbook/pkg/kernel"
	"tableflip.dev/nbook/pkg/printers"
)

// Kernels prints every kernel spec found in Dirs, marking Default.
type Kernels struct {
	Dirs    []string
	Default string
	Out     io.Writer
}

// Do renders the kernel table.
func (k *Kernels) Do(_ context.Context) error {
	specs, err := kernel.FindSpecs(k.Dirs)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: k.Out}
	pp.NewLine()
	if len(specs) == 0 {
		pp.Title("No kernels found")
		pp.Pairs(dirRows(k.Dirs))
		return nil
	}
	pp.Kernels(specs, k.Default)
	return nil
}

func dirRows(dirs []string) [][2]string {
	rows := make([][2]string, 0, len(dirs))
	for _, d := range dirs {
		rows = append(rows, [2]string{"searched", d})
	}
	return rows
}
