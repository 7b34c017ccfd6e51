// Package notebook holds the notebook document: an ordered set of cells keyed
// by id plus notebook level metadata.
//
// A Document is an immutable value. Every operation in this package takes a
// Document and returns a new one; unchanged cells and metadata are shared
// between the input and the result, so callers must treat anything they read
// out of a Document as read-only.
//
// The document invariant holds for every value produced here: each id in the
// cell order has exactly one cell, and there are no cells outside the order.
package notebook

import (
	"encoding/json"
	"fmt"

	"tableflip.dev/nbook/pkg/cell"
)

// Document is an ordered collection of cells plus metadata. The zero value
// is an empty document.
type Document struct {
	order    []string
	cells    map[string]cell.Cell
	metadata map[string]any
}

// New returns an empty document carrying a copy of metadata.
func New(metadata map[string]any) Document {
	md, _ := DeepCopy(metadata).(map[string]any)
	return Document{metadata: md}
}

// Build assembles a document from an explicit order and cell map. It fails
// with ErrInvalidDocument when the two disagree.
func Build(order []string, cells map[string]cell.Cell, metadata map[string]any) (Document, error) {
	d := Document{
		order:    append([]string(nil), order...),
		cells:    make(map[string]cell.Cell, len(cells)),
		metadata: nil,
	}
	for id, c := range cells {
		d.cells[id] = c.Clone()
	}
	if md, ok := DeepCopy(metadata).(map[string]any); ok {
		d.metadata = md
	}
	if err := Validate(d); err != nil {
		return Document{}, err
	}
	return d, nil
}

// Validate checks the document invariant.
func Validate(d Document) error {
	seen := make(map[string]struct{}, len(d.order))
	for _, id := range d.order {
		if id == "" {
			return invalidf("empty cell id in order")
		}
		if _, dup := seen[id]; dup {
			return invalidf("cell %q appears twice in order", id)
		}
		seen[id] = struct{}{}
		if _, ok := d.cells[id]; !ok {
			return invalidf("cell %q in order has no entry", id)
		}
	}
	for id := range d.cells {
		if _, ok := seen[id]; !ok {
			return invalidf("cell %q is not in order", id)
		}
	}
	return nil
}

// Len returns the number of cells.
func (d Document) Len() int { return len(d.order) }

// CellOrder returns a copy of the cell ids in document order.
func (d Document) CellOrder() []string {
	return append([]string(nil), d.order...)
}

// IndexOf returns the position of id or -1.
func (d Document) IndexOf(id string) int {
	for i, candidate := range d.order {
		if candidate == id {
			return i
		}
	}
	return -1
}

// At returns the id at position i.
func (d Document) At(i int) (string, bool) {
	if i < 0 || i >= len(d.order) {
		return "", false
	}
	return d.order[i], true
}

// Has reports whether id is part of the document.
func (d Document) Has(id string) bool {
	_, ok := d.cells[id]
	return ok
}

// Cell returns the cell stored under id.
func (d Document) Cell(id string) (cell.Cell, bool) {
	c, ok := d.cells[id]
	return c, ok
}

// Metadata returns a deep copy of the notebook metadata.
func (d Document) Metadata() map[string]any {
	md, _ := DeepCopy(d.metadata).(map[string]any)
	if md == nil {
		md = map[string]any{}
	}
	return md
}

// MetadataValue walks nested metadata maps along path.
func (d Document) MetadataValue(path ...string) (any, bool) {
	var cur any = d.metadata
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (d Document) copyCells() map[string]cell.Cell {
	out := make(map[string]cell.Cell, len(d.cells)+1)
	for id, c := range d.cells {
		out[id] = c
	}
	return out
}

// InsertCellAt places c under id at index, clamped to [0, Len()].
func InsertCellAt(d Document, c cell.Cell, id string, index int) (Document, error) {
	if id == "" {
		return d, invalidf("empty cell id")
	}
	if d.Has(id) {
		return d, &CellError{Kind: ErrDuplicateCell, Op: "insert", ID: id}
	}
	if index < 0 {
		index = 0
	}
	if index > len(d.order) {
		index = len(d.order)
	}
	order := make([]string, 0, len(d.order)+1)
	order = append(order, d.order[:index]...)
	order = append(order, id)
	order = append(order, d.order[index:]...)

	cells := d.copyCells()
	cells[id] = c.Clone()
	return Document{order: order, cells: cells, metadata: d.metadata}, nil
}

// AppendCell inserts c under id at the end of the document.
func AppendCell(d Document, c cell.Cell, id string) (Document, error) {
	return InsertCellAt(d, c, id, d.Len())
}

// RemoveCell drops id from the document. Removing an absent id is a no-op.
func RemoveCell(d Document, id string) Document {
	idx := d.IndexOf(id)
	if idx < 0 {
		return d
	}
	order := make([]string, 0, len(d.order)-1)
	order = append(order, d.order[:idx]...)
	order = append(order, d.order[idx+1:]...)

	cells := d.copyCells()
	delete(cells, id)
	return Document{order: order, cells: cells, metadata: d.metadata}
}

func updateCell(d Document, id string, fn func(cell.Cell) cell.Cell) Document {
	c, ok := d.cells[id]
	if !ok {
		return d
	}
	cells := d.copyCells()
	cells[id] = fn(c)
	return Document{order: d.order, cells: cells, metadata: d.metadata}
}

// UpdateSource replaces the source of id.
func UpdateSource(d Document, id, source string) Document {
	return updateCell(d, id, func(c cell.Cell) cell.Cell {
		c.Source = source
		return c
	})
}

// UpdateOutputs replaces the outputs of id with a copy of outputs.
func UpdateOutputs(d Document, id string, outputs []cell.Output) Document {
	return updateCell(d, id, func(c cell.Cell) cell.Cell {
		c.Outputs = append([]cell.Output{}, outputs...)
		return c
	})
}

// ClearOutputs empties the outputs of id.
func ClearOutputs(d Document, id string) Document {
	return updateCell(d, id, func(c cell.Cell) cell.Cell {
		if c.Outputs != nil || c.IsCode() {
			c.Outputs = []cell.Output{}
		}
		return c
	})
}

// UpdateExecutionCount sets the execution count of id.
func UpdateExecutionCount(d Document, id string, count int) Document {
	return updateCell(d, id, func(c cell.Cell) cell.Cell {
		c.ExecutionCount = &count
		return c
	})
}

// MoveCell relocates moving directly above or below anchor.
func MoveCell(d Document, moving, anchor string, above bool) (Document, error) {
	oldIndex := d.IndexOf(moving)
	if oldIndex < 0 {
		return d, notFound("move", moving)
	}
	target := d.IndexOf(anchor)
	if target < 0 {
		return d, notFound("move anchor", anchor)
	}
	newIndex := target
	if !above {
		newIndex++
	}
	if oldIndex == newIndex {
		return d, nil
	}
	// Removing the cell first shifts everything after it one slot left.
	if oldIndex < newIndex {
		newIndex--
	}

	order := make([]string, 0, len(d.order))
	order = append(order, d.order[:oldIndex]...)
	order = append(order, d.order[oldIndex+1:]...)
	order = append(order[:newIndex], append([]string{moving}, order[newIndex:]...)...)
	return Document{order: order, cells: d.cells, metadata: d.metadata}, nil
}

// MergeCellAfter appends the source of the cell following id to id, separated
// by a blank line, and removes the following cell. Merging the last cell is a
// no-op.
func MergeCellAfter(d Document, id string) (Document, error) {
	idx := d.IndexOf(id)
	if idx < 0 {
		return d, notFound("merge", id)
	}
	if idx == len(d.order)-1 {
		return d, nil
	}
	nextID := d.order[idx+1]
	source := d.cells[id].Source + "\n\n" + d.cells[nextID].Source
	return RemoveCell(UpdateSource(d, id, source), nextID), nil
}

// SetMetadataField stores a deep copy of value under field.
func SetMetadataField(d Document, field string, value any) Document {
	md := make(map[string]any, len(d.metadata)+1)
	for k, v := range d.metadata {
		md[k] = v
	}
	md[field] = DeepCopy(value)
	return Document{order: d.order, cells: d.cells, metadata: md}
}

// SetLanguageInfo replaces metadata.language_info.
func SetLanguageInfo(d Document, info map[string]any) Document {
	return SetMetadataField(d, "language_info", info)
}

type wireDocument struct {
	CellOrder []string             `json:"cellOrder"`
	CellMap   map[string]cell.Cell `json:"cellMap"`
	Metadata  map[string]any       `json:"metadata"`
}

// MarshalJSON writes the document as {cellOrder, cellMap, metadata}.
func (d Document) MarshalJSON() ([]byte, error) {
	w := wireDocument{
		CellOrder: d.order,
		CellMap:   d.cells,
		Metadata:  d.metadata,
	}
	if w.CellOrder == nil {
		w.CellOrder = []string{}
	}
	if w.CellMap == nil {
		w.CellMap = map[string]cell.Cell{}
	}
	if w.Metadata == nil {
		w.Metadata = map[string]any{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the {cellOrder, cellMap, metadata} shape and validates it.
func (d *Document) UnmarshalJSON(data []byte) error {
	var w wireDocument
	if err := cell.DecodeJSON(data, &w); err != nil {
		return fmt.Errorf("notebook: decode: %w", err)
	}
	doc, err := Build(w.CellOrder, w.CellMap, w.Metadata)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}
