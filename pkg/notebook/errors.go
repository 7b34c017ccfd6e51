package notebook

import (
	"errors"
	"fmt"
)

var (
	// ErrCellNotFound is returned when an operation requires a cell that is
	// not part of the document.
	ErrCellNotFound = errors.New("notebook: cell not found")
	// ErrDuplicateCell is returned when inserting an id that already exists.
	ErrDuplicateCell = errors.New("notebook: duplicate cell id")
	// ErrInvalidDocument marks a document whose order and cell map disagree.
	ErrInvalidDocument = errors.New("notebook: invalid document")
)

// CellError ties a structural failure to the operation and cell id involved.
type CellError struct {
	Kind error
	Op   string
	ID   string
}

func (e *CellError) Error() string {
	if e == nil {
		return ""
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %q", e.Kind.Error(), e.ID)
	}
	return fmt.Sprintf("%s: %s %q", e.Kind.Error(), e.Op, e.ID)
}

func (e *CellError) Unwrap() error { return e.Kind }

func notFound(op, id string) error {
	return &CellError{Kind: ErrCellNotFound, Op: op, ID: id}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDocument, fmt.Sprintf(format, args...))
}
