package document

import (
	"encoding/json"
	"fmt"

	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/notebook"
)

// Intent is any edit request. Values the reducer does not recognize leave the
// state untouched.
type Intent = any

// Pager is an opaque pager payload produced by the kernel for a cell.
type Pager = json.RawMessage

// Status is the run status of a single cell.
type Status string

const (
	// StatusBusy marks a cell whose code is running.
	StatusBusy Status = "busy"
	// StatusIdle marks a cell that is not running.
	StatusIdle Status = "idle"
)

// LoadNotebook replaces the whole document.
type LoadNotebook struct {
	Document notebook.Document
}

// Describe renders the intent for logs.
func (m LoadNotebook) Describe() string {
	return fmt.Sprintf("load cells:%d", m.Document.Len())
}

// FocusCell moves focus to ID without checking that it exists.
type FocusCell struct {
	ID string
}

// Describe renders the intent for logs.
func (m FocusCell) Describe() string { return fmt.Sprintf("focus id:%q", m.ID) }

// FocusNextCell moves focus past ID, optionally creating a cell at the end.
type FocusNextCell struct {
	ID            string
	CreateIfAtEnd bool
}

// Describe renders the intent for logs.
func (m FocusNextCell) Describe() string {
	return fmt.Sprintf("focus-next id:%q create:%t", m.ID, m.CreateIfAtEnd)
}

// FocusPreviousCell moves focus before ID, clamping at the first cell.
type FocusPreviousCell struct {
	ID string
}

// Describe renders the intent for logs.
func (m FocusPreviousCell) Describe() string { return fmt.Sprintf("focus-previous id:%q", m.ID) }

// ToggleStickyCell pins or unpins ID.
type ToggleStickyCell struct {
	ID string
}

// Describe renders the intent for logs.
func (m ToggleStickyCell) Describe() string { return fmt.Sprintf("toggle-sticky id:%q", m.ID) }

// UpdateExecutionCount records the kernel execution counter for ID.
type UpdateExecutionCount struct {
	ID    string
	Count int
}

// Describe renders the intent for logs.
func (m UpdateExecutionCount) Describe() string {
	return fmt.Sprintf("execution-count id:%q count:%d", m.ID, m.Count)
}

// MoveCell places ID directly above or below DestinationID.
type MoveCell struct {
	ID            string
	DestinationID string
	Above         bool
}

// Describe renders the intent for logs.
func (m MoveCell) Describe() string {
	return fmt.Sprintf("move id:%q dest:%q above:%t", m.ID, m.DestinationID, m.Above)
}

// RemoveCell deletes ID.
type RemoveCell struct {
	ID string
}

// Describe renders the intent for logs.
func (m RemoveCell) Describe() string { return fmt.Sprintf("remove id:%q", m.ID) }

// NewCellAfter inserts a fresh cell holding Source after ID. An empty ID
// inserts at the start of the document.
type NewCellAfter struct {
	ID     string
	Type   cell.Type
	Source string
}

// Describe renders the intent for logs.
func (m NewCellAfter) Describe() string {
	return fmt.Sprintf("new-after id:%q type:%q", m.ID, m.Type)
}

// NewCellBefore inserts a fresh empty cell before ID. An empty ID inserts at
// the start of the document.
type NewCellBefore struct {
	ID   string
	Type cell.Type
}

// Describe renders the intent for logs.
func (m NewCellBefore) Describe() string {
	return fmt.Sprintf("new-before id:%q type:%q", m.ID, m.Type)
}

// MergeCellAfter folds the cell following ID into ID.
type MergeCellAfter struct {
	ID string
}

// Describe renders the intent for logs.
func (m MergeCellAfter) Describe() string { return fmt.Sprintf("merge-after id:%q", m.ID) }

// AppendCell adds a fresh empty cell at the end.
type AppendCell struct {
	Type cell.Type
}

// Describe renders the intent for logs.
func (m AppendCell) Describe() string { return fmt.Sprintf("append type:%q", m.Type) }

// UpdateSource replaces the source of ID.
type UpdateSource struct {
	ID     string
	Source string
}

// Describe renders the intent for logs.
func (m UpdateSource) Describe() string {
	return fmt.Sprintf("update-source id:%q len:%d", m.ID, len(m.Source))
}

// ClearOutput empties the outputs of ID.
type ClearOutput struct {
	ID string
}

// Describe renders the intent for logs.
func (m ClearOutput) Describe() string { return fmt.Sprintf("clear-output id:%q", m.ID) }

// UpdateOutputs replaces the outputs of ID.
type UpdateOutputs struct {
	ID      string
	Outputs []cell.Output
}

// Describe renders the intent for logs.
func (m UpdateOutputs) Describe() string {
	return fmt.Sprintf("update-outputs id:%q count:%d", m.ID, len(m.Outputs))
}

// UpdatePagers stores the pager payloads for ID.
type UpdatePagers struct {
	ID     string
	Pagers []Pager
}

// Describe renders the intent for logs.
func (m UpdatePagers) Describe() string {
	return fmt.Sprintf("update-pagers id:%q count:%d", m.ID, len(m.Pagers))
}

// UpdateStatus stores the run status for ID.
type UpdateStatus struct {
	ID     string
	Status Status
}

// Describe renders the intent for logs.
func (m UpdateStatus) Describe() string {
	return fmt.Sprintf("update-status id:%q status:%q", m.ID, m.Status)
}

// SetLanguageInfo replaces metadata.language_info.
type SetLanguageInfo struct {
	Info map[string]any
}

// Describe renders the intent for logs.
func (m SetLanguageInfo) Describe() string {
	return fmt.Sprintf("language-info name:%v", m.Info["name"])
}

// OverwriteMetadataField replaces one top level metadata field.
type OverwriteMetadataField struct {
	Field string
	Value any
}

// Describe renders the intent for logs.
func (m OverwriteMetadataField) Describe() string {
	return fmt.Sprintf("metadata field:%q", m.Field)
}
