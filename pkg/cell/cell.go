// Package cell defines the unit a notebook document is made of.
package cell

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type identifies how a cell is treated by the editor and the kernel.
type Type string

const (
	// Code cells are executed by the kernel and carry outputs.
	Code Type = "code"
	// Markdown cells hold narrative text.
	Markdown Type = "markdown"
	// Raw cells are passed through untouched.
	Raw Type = "raw"
)

// AllTypes returns the cell types that can be created from the CLI and UI.
func AllTypes() []Type {
	return []Type{Code, Markdown, Raw}
}

// ParseType converts a string to a Type or returns an error for unknown values.
// An empty string means Code.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if t == "" {
		return Code, nil
	}
	for _, candidate := range AllTypes() {
		if candidate == t {
			return candidate, nil
		}
	}
	return Code, fmt.Errorf("cell: unknown type %q", raw)
}

// Output is a single opaque output record produced by the kernel.
type Output = json.RawMessage

// Cell is a value object. Operations that change a cell return a modified
// copy; slices and maps held by a Cell are never written to in place.
type Cell struct {
	Type           Type
	Source         string
	Outputs        []Output
	ExecutionCount *int
	Metadata       map[string]any

	// Extra keeps fields this package does not model so that untouched cells
	// survive a load/save cycle unchanged.
	Extra map[string]json.RawMessage

	// noCount marks a code cell read without an execution_count key.
	noCount bool
}

// New returns an empty cell of the given type holding source.
func New(t Type, source string) Cell {
	c := Cell{Type: t, Source: source}
	if t == Code {
		c.Outputs = []Output{}
	}
	return c
}

// EmptyCode returns a code cell with no source.
func EmptyCode() Cell { return New(Code, "") }

// EmptyMarkdown returns a markdown cell with no source.
func EmptyMarkdown() Cell { return New(Markdown, "") }

// IsCode reports whether the cell is executed by the kernel.
func (c Cell) IsCode() bool { return c.Type == Code }

// Clone returns a copy that shares nothing mutable with c.
func (c Cell) Clone() Cell {
	out := c
	if c.Outputs != nil {
		out.Outputs = make([]Output, len(c.Outputs))
		for i, o := range c.Outputs {
			out.Outputs[i] = append(Output(nil), o...)
		}
	}
	if c.ExecutionCount != nil {
		n := *c.ExecutionCount
		out.ExecutionCount = &n
	}
	if c.Metadata != nil {
		out.Metadata, _ = DeepCopy(c.Metadata).(map[string]any)
	}
	if c.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// Summary returns the first non-empty line of the source.
func (c Cell) Summary() string {
	for _, line := range strings.Split(c.Source, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}

var knownFields = map[string]struct{}{
	"cell_type":       {},
	"source":          {},
	"outputs":         {},
	"execution_count": {},
	"metadata":        {},
}

// MarshalJSON writes the cell in the notebook cell shape. Code cells always
// carry outputs, and execution_count unless they were read without one.
func (c Cell) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+5)
	for k, v := range c.Extra {
		out[k] = v
	}
	out["cell_type"] = c.Type
	out["source"] = c.Source
	if c.Metadata != nil {
		out["metadata"] = c.Metadata
	}
	if c.Type == Code || c.Outputs != nil {
		outputs := c.Outputs
		if outputs == nil {
			outputs = []Output{}
		}
		out["outputs"] = outputs
	}
	if c.ExecutionCount != nil || (c.Type == Code && !c.noCount) {
		out["execution_count"] = c.ExecutionCount
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a cell. Source may be a string or a list of lines.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("cell: %w", err)
	}
	next := Cell{}
	if v, ok := raw["cell_type"]; ok {
		var t string
		if err := json.Unmarshal(v, &t); err != nil {
			return fmt.Errorf("cell: cell_type: %w", err)
		}
		next.Type = Type(t)
	}
	if v, ok := raw["source"]; ok {
		src, err := decodeMultiline(v)
		if err != nil {
			return fmt.Errorf("cell: source: %w", err)
		}
		next.Source = src
	}
	if v, ok := raw["outputs"]; ok {
		if err := json.Unmarshal(v, &next.Outputs); err != nil {
			return fmt.Errorf("cell: outputs: %w", err)
		}
		if next.Outputs == nil {
			next.Outputs = []Output{}
		}
	}
	if v, ok := raw["execution_count"]; ok {
		if err := json.Unmarshal(v, &next.ExecutionCount); err != nil {
			return fmt.Errorf("cell: execution_count: %w", err)
		}
	} else {
		next.noCount = next.Type == Code
	}
	if v, ok := raw["metadata"]; ok {
		if err := DecodeJSON(v, &next.Metadata); err != nil {
			return fmt.Errorf("cell: metadata: %w", err)
		}
	}
	for k, v := range raw {
		if _, known := knownFields[k]; known {
			continue
		}
		if next.Extra == nil {
			next.Extra = make(map[string]json.RawMessage)
		}
		next.Extra[k] = v
	}
	*c = next
	return nil
}

func decodeMultiline(v json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(v, &lines); err != nil {
		return "", err
	}
	return strings.Join(lines, ""), nil
}

// SplitLines splits source into lines that keep their trailing newline, the
// form nbformat files use on disk.
func SplitLines(source string) []string {
	if source == "" {
		return []string{}
	}
	lines := strings.SplitAfter(source, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
