// Package mcp provides the Model Context Protocol server integration for nbook.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/nbook/pkg/app"
	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/document"
	"tableflip.dev/nbook/pkg/notebook"
)

// Service coordinates persistence-backed operations that are shared by the MCP server.
type Service struct {
	App *app.Service
}

// NotebookSummary describes a stored notebook.
type NotebookSummary struct {
	Name      string `json:"name"`
	CellCount int    `json:"cellCount"`
	Language  string `json:"language"`
}

// CellDTO is a transport-friendly projection of a cell.
type CellDTO struct {
	ID             string `json:"id"`
	Index          int    `json:"index"`
	Type           string `json:"type"`
	Source         string `json:"source"`
	ExecutionCount *int   `json:"executionCount,omitempty"`
	Outputs        int    `json:"outputs"`
}

// NotebookDTO is a whole notebook in cell order.
type NotebookDTO struct {
	Name     string    `json:"name"`
	Language string    `json:"language"`
	Cells    []CellDTO `json:"cells"`
}

// AddCellOptions captures the parameters used to create a new cell.
type AddCellOptions struct {
	Notebook string
	// After is the cell the new one follows. Empty appends.
	After  string
	Type   cell.Type
	Source string
}

// NewService builds a service wrapper around svc.
func NewService(svc *app.Service) *Service {
	return &Service{App: svc}
}

func (s *Service) load(ctx context.Context, name string) (notebook.Document, error) {
	if s.App == nil || s.App.Persistence == nil {
		return notebook.Document{}, errors.New("persistence is not configured")
	}
	if strings.TrimSpace(name) == "" {
		return notebook.Document{}, errors.New("notebook name is required")
	}
	return s.App.Persistence.Load(ctx, name)
}

func (s *Service) edit(ctx context.Context, name string, intents ...app.Intent) (document.State, error) {
	if s.App == nil {
		return document.State{}, errors.New("persistence is not configured")
	}
	return s.App.Edit(ctx, name, intents...)
}

// ListNotebooks returns summaries for every stored notebook.
func (s *Service) ListNotebooks(ctx context.Context) ([]NotebookSummary, error) {
	if s.App == nil {
		return nil, errors.New("persistence is not configured")
	}
	names, err := s.App.Notebooks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]NotebookSummary, 0, len(names))
	for _, name := range names {
		d, err := s.load(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, NotebookSummary{
			Name:      name,
			CellCount: d.Len(),
			Language:  document.LanguageMode(d),
		})
	}
	return out, nil
}

// GetNotebook returns every cell of name.
func (s *Service) GetNotebook(ctx context.Context, name string) (*NotebookDTO, error) {
	d, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	return toNotebookDTO(name, d), nil
}

// AddCell inserts a new cell and returns it.
func (s *Service) AddCell(ctx context.Context, opts AddCellOptions) (*CellDTO, error) {
	d, err := s.load(ctx, opts.Notebook)
	if err != nil {
		return nil, err
	}
	after := opts.After
	index := d.IndexOf(after) + 1
	if after == "" {
		after, _ = d.At(d.Len() - 1)
		index = d.Len()
	}
	st, err := s.edit(ctx, opts.Notebook, document.NewCellAfter{ID: after, Type: opts.Type, Source: opts.Source})
	if err != nil {
		return nil, err
	}
	id, ok := st.Document.At(index)
	if !ok {
		return nil, fmt.Errorf("new cell missing at index %d", index)
	}
	return cellDTO(st.Document, id), nil
}

// UpdateSource replaces the source of cell id.
func (s *Service) UpdateSource(ctx context.Context, name, id, source string) (*CellDTO, error) {
	if err := s.requireCell(ctx, name, id); err != nil {
		return nil, err
	}
	st, err := s.edit(ctx, name, document.UpdateSource{ID: id, Source: source})
	if err != nil {
		return nil, err
	}
	return cellDTO(st.Document, id), nil
}

// RemoveCell deletes cell id.
func (s *Service) RemoveCell(ctx context.Context, name, id string) error {
	if err := s.requireCell(ctx, name, id); err != nil {
		return err
	}
	_, err := s.edit(ctx, name, document.RemoveCell{ID: id})
	return err
}

// MoveCell places id directly below, or above, anchor.
func (s *Service) MoveCell(ctx context.Context, name, id, anchor string, above bool) (*NotebookDTO, error) {
	st, err := s.edit(ctx, name, document.MoveCell{ID: id, DestinationID: anchor, Above: above})
	if err != nil {
		return nil, err
	}
	return toNotebookDTO(name, st.Document), nil
}

// MergeCells folds the cell after id into id and returns the merged cell.
func (s *Service) MergeCells(ctx context.Context, name, id string) (*CellDTO, error) {
	st, err := s.edit(ctx, name, document.MergeCellAfter{ID: id})
	if err != nil {
		return nil, err
	}
	return cellDTO(st.Document, id), nil
}

// ExportNotebook renders name as nbformat v4 JSON.
func (s *Service) ExportNotebook(ctx context.Context, name string) (string, error) {
	if s.App == nil {
		return "", errors.New("persistence is not configured")
	}
	data, err := s.App.Export(ctx, name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Service) requireCell(ctx context.Context, name, id string) error {
	d, err := s.load(ctx, name)
	if err != nil {
		return err
	}
	if !d.Has(id) {
		return &notebook.CellError{Kind: notebook.ErrCellNotFound, ID: id}
	}
	return nil
}

func toNotebookDTO(name string, d notebook.Document) *NotebookDTO {
	out := &NotebookDTO{
		Name:     name,
		Language: document.LanguageMode(d),
		Cells:    make([]CellDTO, 0, d.Len()),
	}
	for _, id := range d.CellOrder() {
		out.Cells = append(out.Cells, *cellDTO(d, id))
	}
	return out
}

func cellDTO(d notebook.Document, id string) *CellDTO {
	c, _ := d.Cell(id)
	return &CellDTO{
		ID:             id,
		Index:          d.IndexOf(id),
		Type:           string(c.Type),
		Source:         c.Source,
		ExecutionCount: c.ExecutionCount,
		Outputs:        len(c.Outputs),
	}
}
