package notebook

import (
	"encoding/json"
	"fmt"

	"tableflip.dev/nbook/pkg/cell"
)

const (
	nbformatMajor = 4
	nbformatMinor = 5
)

type nbFile struct {
	Cells         []json.RawMessage `json:"cells"`
	Metadata      map[string]any    `json:"metadata"`
	NBFormat      int               `json:"nbformat"`
	NBFormatMinor int               `json:"nbformat_minor"`
}

// FromNBFormat reads a Jupyter v4 notebook. Cells keep their "id" when it is
// present and unique; every other cell gets an id from newID.
func FromNBFormat(data []byte, newID func() string) (Document, error) {
	var f nbFile
	if err := cell.DecodeJSON(data, &f); err != nil {
		return Document{}, fmt.Errorf("notebook: decode nbformat: %w", err)
	}
	if f.NBFormat != 0 && f.NBFormat != nbformatMajor {
		return Document{}, fmt.Errorf("notebook: unsupported nbformat %d", f.NBFormat)
	}

	order := make([]string, 0, len(f.Cells))
	cells := make(map[string]cell.Cell, len(f.Cells))
	for i, raw := range f.Cells {
		var c cell.Cell
		if err := json.Unmarshal(raw, &c); err != nil {
			return Document{}, fmt.Errorf("notebook: cell %d: %w", i, err)
		}
		id := ""
		if v, ok := c.Extra["id"]; ok {
			_ = json.Unmarshal(v, &id)
			delete(c.Extra, "id")
			if len(c.Extra) == 0 {
				c.Extra = nil
			}
		}
		if _, taken := cells[id]; id == "" || taken {
			id = newID()
		}
		order = append(order, id)
		cells[id] = c
	}
	return Build(order, cells, f.Metadata)
}

// ToNBFormat writes d as a Jupyter v4 notebook in document order.
func ToNBFormat(d Document) ([]byte, error) {
	f := nbFile{
		Cells:         make([]json.RawMessage, 0, d.Len()),
		Metadata:      d.Metadata(),
		NBFormat:      nbformatMajor,
		NBFormatMinor: nbformatMinor,
	}
	for _, id := range d.order {
		c := d.cells[id]
		b, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("notebook: encode cell %q: %w", id, err)
		}
		var fields map[string]any
		if err := cell.DecodeJSON(b, &fields); err != nil {
			return nil, fmt.Errorf("notebook: encode cell %q: %w", id, err)
		}
		fields["id"] = id
		fields["source"] = cell.SplitLines(c.Source)
		if _, ok := fields["metadata"]; !ok {
			fields["metadata"] = map[string]any{}
		}
		if _, ok := fields["execution_count"]; !ok && c.IsCode() {
			fields["execution_count"] = nil
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("notebook: encode cell %q: %w", id, err)
		}
		f.Cells = append(f.Cells, raw)
	}
	return json.MarshalIndent(f, "", " ")
}
