// Package focus computes where keyboard focus goes when moving through a
// notebook document.
package focus

import (
	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/notebook"
)

// Next returns the cell after current. When current is the last cell, or is
// not part of the document, and createIfAtEnd is set, an empty code cell is
// inserted after it (appended when current is unknown) under newID() and
// becomes the focus. Without createIfAtEnd focus stays on current.
func Next(d notebook.Document, current string, createIfAtEnd bool, newID func() string) (notebook.Document, string, error) {
	idx := d.IndexOf(current)
	if idx >= 0 && idx+1 < d.Len() {
		id, _ := d.At(idx + 1)
		return d, id, nil
	}
	if !createIfAtEnd {
		return d, current, nil
	}

	at := idx + 1
	if idx < 0 {
		at = d.Len()
	}
	id := newID()
	next, err := notebook.InsertCellAt(d, cell.EmptyCode(), id, at)
	if err != nil {
		return d, current, err
	}
	return next, id, nil
}

// Previous returns the cell before current, clamping at the first cell. An
// empty document has no focus target.
func Previous(d notebook.Document, current string) string {
	idx := d.IndexOf(current) - 1
	if idx < 0 {
		idx = 0
	}
	id, _ := d.At(idx)
	return id
}
