package document

import (
	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/notebook"
)

// ViewState is the per-document UI state that lives next to the document.
// Maps are replaced, never written in place, by the reducer.
type ViewState struct {
	FocusedCell  string
	StickyCells  map[string]bool
	CellPagers   map[string][]Pager
	CellStatuses map[string]Status
}

// State is the pair the document reducer transitions.
type State struct {
	Document notebook.Document
	View     ViewState
}

// NewState returns the state for a freshly loaded document.
func NewState(d notebook.Document) State {
	s := State{Document: d}
	s.View.FocusedCell, _ = d.At(0)
	return s
}

// Focused returns the focused cell when it is part of the document.
func (s State) Focused() (string, cell.Cell, bool) {
	c, ok := s.Document.Cell(s.View.FocusedCell)
	return s.View.FocusedCell, c, ok
}

// IsSticky reports whether id is pinned.
func (s State) IsSticky(id string) bool {
	return s.View.StickyCells[id]
}

// Running reports whether id is currently executing.
func (s State) Running(id string) bool {
	return s.View.CellStatuses[id] == StatusBusy
}

// StickyOrder returns the pinned cells in document order.
func (s State) StickyOrder() []string {
	if len(s.View.StickyCells) == 0 {
		return nil
	}
	var out []string
	for _, id := range s.Document.CellOrder() {
		if s.View.StickyCells[id] {
			out = append(out, id)
		}
	}
	return out
}

// LanguageMode picks the syntax mode name from language_info, preferring
// codemirror_mode.name, then codemirror_mode, then name, then "text".
func LanguageMode(d notebook.Document) string {
	language := "text"
	if v, ok := d.MetadataValue("language_info", "codemirror_mode", "name"); ok {
		if s, ok := v.(string); ok && s != "" {
			language = s
		}
	} else if v, ok := d.MetadataValue("language_info", "codemirror_mode"); ok {
		if s, ok := v.(string); ok && s != "" {
			language = s
		}
	} else if v, ok := d.MetadataValue("language_info", "name"); ok {
		if s, ok := v.(string); ok && s != "" {
			language = s
		}
	}
	if language == "ipython" {
		language = "python"
	}
	return language
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// live keeps the entries of m whose cell is in d. It returns nil when none are.
func live[V any](d notebook.Document, m map[string]V) map[string]V {
	var out map[string]V
	for id, v := range m {
		if !d.Has(id) {
			continue
		}
		if out == nil {
			out = make(map[string]V, len(m))
		}
		out[id] = v
	}
	return out
}
