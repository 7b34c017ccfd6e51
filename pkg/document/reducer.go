// Package document applies edit intents to a notebook document and the view
// state that travels with it.
package document

import (
	"github.com/google/uuid"

	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/focus"
	"tableflip.dev/nbook/pkg/notebook"
)

// Reducer turns (State, Intent) into a new State. It never mutates its input.
type Reducer struct {
	// NewID supplies ids for cells the reducer creates.
	NewID func() string
}

// NewReducer returns a Reducer that assigns random UUIDs to new cells.
func NewReducer() Reducer {
	return Reducer{NewID: uuid.NewString}
}

func (r Reducer) newID() string {
	if r.NewID == nil {
		return uuid.NewString()
	}
	return r.NewID()
}

// Handles reports whether in is a document intent.
func Handles(in Intent) bool {
	switch in.(type) {
	case LoadNotebook, FocusCell, FocusNextCell, FocusPreviousCell, ToggleStickyCell,
		UpdateExecutionCount, MoveCell, RemoveCell, NewCellAfter, NewCellBefore,
		MergeCellAfter, AppendCell, UpdateSource, ClearOutput, UpdateOutputs,
		UpdatePagers, UpdateStatus, SetLanguageInfo, OverwriteMetadataField:
		return true
	default:
		return false
	}
}

// Reduce applies in to s. Structural failures (duplicate ids, unknown cells
// for operations that need them) return s unchanged together with the error.
// Unknown intents return s and no error.
func (r Reducer) Reduce(s State, in Intent) (State, error) {
	switch msg := in.(type) {
	case LoadNotebook:
		next := NewState(msg.Document)
		next.View.StickyCells = live(msg.Document, s.View.StickyCells)
		next.View.CellPagers = live(msg.Document, s.View.CellPagers)
		next.View.CellStatuses = live(msg.Document, s.View.CellStatuses)
		return next, nil

	case FocusCell:
		s.View.FocusedCell = msg.ID
		return s, nil

	case FocusNextCell:
		d, id, err := focus.Next(s.Document, msg.ID, msg.CreateIfAtEnd, r.newID)
		if err != nil {
			return s, err
		}
		s.Document = d
		s.View.FocusedCell = id
		return s, nil

	case FocusPreviousCell:
		s.View.FocusedCell = focus.Previous(s.Document, msg.ID)
		return s, nil

	case ToggleStickyCell:
		sticky := copyMap(s.View.StickyCells)
		if sticky[msg.ID] {
			delete(sticky, msg.ID)
		} else {
			sticky[msg.ID] = true
		}
		s.View.StickyCells = sticky
		return s, nil

	case UpdateExecutionCount:
		s.Document = notebook.UpdateExecutionCount(s.Document, msg.ID, msg.Count)
		return s, nil

	case MoveCell:
		d, err := notebook.MoveCell(s.Document, msg.ID, msg.DestinationID, msg.Above)
		if err != nil {
			return s, err
		}
		s.Document = d
		return s, nil

	case RemoveCell:
		return removed(s, notebook.RemoveCell(s.Document, msg.ID), msg.ID), nil

	case NewCellAfter:
		index := 0
		if msg.ID != "" {
			if index = s.Document.IndexOf(msg.ID); index < 0 {
				return s, &notebook.CellError{Kind: notebook.ErrCellNotFound, Op: "new cell after", ID: msg.ID}
			}
			index++
		}
		return r.insert(s, newCell(msg.Type, msg.Source), index)

	case NewCellBefore:
		index := 0
		if msg.ID != "" {
			if index = s.Document.IndexOf(msg.ID); index < 0 {
				return s, &notebook.CellError{Kind: notebook.ErrCellNotFound, Op: "new cell before", ID: msg.ID}
			}
		}
		return r.insert(s, newCell(msg.Type, ""), index)

	case MergeCellAfter:
		idx := s.Document.IndexOf(msg.ID)
		next, _ := s.Document.At(idx + 1)
		d, err := notebook.MergeCellAfter(s.Document, msg.ID)
		if err != nil {
			return s, err
		}
		if d.Len() == s.Document.Len() {
			return s, nil
		}
		wasFocused := s.View.FocusedCell == next
		s = removed(s, d, next)
		if wasFocused {
			s.View.FocusedCell = msg.ID
		}
		return s, nil

	case AppendCell:
		return r.insert(s, newCell(msg.Type, ""), s.Document.Len())

	case UpdateSource:
		s.Document = notebook.UpdateSource(s.Document, msg.ID, msg.Source)
		return s, nil

	case ClearOutput:
		s.Document = notebook.ClearOutputs(s.Document, msg.ID)
		return s, nil

	case UpdateOutputs:
		s.Document = notebook.UpdateOutputs(s.Document, msg.ID, msg.Outputs)
		return s, nil

	case UpdatePagers:
		pagers := copyMap(s.View.CellPagers)
		pagers[msg.ID] = append([]Pager(nil), msg.Pagers...)
		s.View.CellPagers = pagers
		return s, nil

	case UpdateStatus:
		statuses := copyMap(s.View.CellStatuses)
		statuses[msg.ID] = msg.Status
		s.View.CellStatuses = statuses
		return s, nil

	case SetLanguageInfo:
		s.Document = notebook.SetLanguageInfo(s.Document, msg.Info)
		return s, nil

	case OverwriteMetadataField:
		s.Document = notebook.SetMetadataField(s.Document, msg.Field, msg.Value)
		return s, nil
	}
	return s, nil
}

func (r Reducer) insert(s State, c cell.Cell, index int) (State, error) {
	d, err := notebook.InsertCellAt(s.Document, c, r.newID(), index)
	if err != nil {
		return s, err
	}
	s.Document = d
	return s, nil
}

func newCell(t cell.Type, source string) cell.Cell {
	switch t {
	case cell.Markdown, cell.Raw:
		return cell.New(t, source)
	default:
		return cell.New(cell.Code, source)
	}
}

// removed swaps in d, which no longer holds id, and drops every view entry
// that pointed at id. Focus on id moves to the cell that took its place.
func removed(s State, d notebook.Document, id string) State {
	if d.Len() == s.Document.Len() {
		return s
	}
	idx := s.Document.IndexOf(id)
	s.Document = d

	if s.View.FocusedCell == id {
		next, ok := d.At(idx)
		if !ok {
			next, _ = d.At(d.Len() - 1)
		}
		s.View.FocusedCell = next
	}
	if _, ok := s.View.StickyCells[id]; ok {
		s.View.StickyCells = copyMap(s.View.StickyCells)
		delete(s.View.StickyCells, id)
	}
	if _, ok := s.View.CellPagers[id]; ok {
		s.View.CellPagers = copyMap(s.View.CellPagers)
		delete(s.View.CellPagers, id)
	}
	if _, ok := s.View.CellStatuses[id]; ok {
		s.View.CellStatuses = copyMap(s.View.CellStatuses)
		delete(s.View.CellStatuses, id)
	}
	return s
}
