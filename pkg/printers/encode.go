package printers

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"tableflip.dev/nbook/pkg/document"
)

// CellRow is the structured form of a cell for -o json|yaml.
type CellRow struct {
	ID             string `json:"id" yaml:"id"`
	Type           string `json:"type" yaml:"type"`
	ExecutionCount *int   `json:"executionCount,omitempty" yaml:"executionCount,omitempty"`
	Outputs        int    `json:"outputs" yaml:"outputs"`
	Sticky         bool   `json:"sticky,omitempty" yaml:"sticky,omitempty"`
	Source         string `json:"source" yaml:"source"`
}

// Rows flattens st in document order.
func Rows(st document.State) []CellRow {
	order := st.Document.CellOrder()
	rows := make([]CellRow, 0, len(order))
	for _, id := range order {
		c, _ := st.Document.Cell(id)
		rows = append(rows, CellRow{
			ID:             id,
			Type:           string(c.Type),
			ExecutionCount: c.ExecutionCount,
			Outputs:        len(c.Outputs),
			Sticky:         st.IsSticky(id),
			Source:         c.Source,
		})
	}
	return rows
}

// Encode writes v to w as "json" or "yaml".
func Encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("printers: unknown output format %q", format)
	}
}
