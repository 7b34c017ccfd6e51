// Package app ties the reducers to persistence and the kernel: it owns the
// state container and offers the operations the CLI and the UI share.
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/document"
	"tableflip.dev/nbook/pkg/kernel"
	"tableflip.dev/nbook/pkg/notebook"
	"tableflip.dev/nbook/pkg/store"
)

// ErrNoFilename is returned by Save before a notebook has been opened.
var ErrNoFilename = errors.New("app: notebook has no name")

var errNoPersistence = errors.New("app: no persistence configured")

// Executor is the execution session client. It runs source for cell id on
// the kernel reached through channels and reports status, outputs, pagers
// and execution counts back through notify, possibly after Execute returns.
type Executor interface {
	Execute(ctx context.Context, channels kernel.Channels, id, source string, notify func(Intent)) error
}

// Service provides high-level notebook operations.
// It wraps persistence and the state container so UIs and CLIs can share logic.
type Service struct {
	Persistence store.Persistence
	Container   *Container
	Executor    Executor
	Launcher    kernel.Launcher
	Dialer      kernel.Dialer
	SpecDirs    []string
	Log         *zap.Logger
}

func (s *Service) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Service) container() *Container {
	if s.Container == nil {
		s.Container = NewContainer(s.Log)
	}
	return s.Container
}

// Dispatch forwards in to the container.
func (s *Service) Dispatch(in Intent) error {
	return s.container().Dispatch(in)
}

// Notebooks returns stored notebook names in order.
func (s *Service) Notebooks(ctx context.Context) ([]string, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	return s.Persistence.Notebooks(ctx), nil
}

// Watch subscribes to persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	return s.Persistence.Watch(ctx)
}

// Open loads name into the container. A name that is not stored yet opens
// a new notebook with one empty code cell.
func (s *Service) Open(ctx context.Context, name string) error {
	if s.Persistence == nil {
		return errNoPersistence
	}
	d, err := s.Persistence.Load(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotebookNotFound):
		d, err = notebook.AppendCell(notebook.New(nil), cell.EmptyCode(), uuid.NewString())
		if err != nil {
			return err
		}
		s.log().Info("new notebook", zap.String("notebook", name))
	case err != nil:
		return err
	}
	c := s.container()
	if err := c.Dispatch(document.LoadNotebook{Document: d}); err != nil {
		return err
	}
	return c.Dispatch(kernel.ChangeFilename{Filename: name})
}

// Reload re-reads the open notebook after an outside change. It is skipped
// while a save is in flight.
func (s *Service) Reload(ctx context.Context) error {
	if s.Persistence == nil {
		return errNoPersistence
	}
	app := s.container().App()
	if app.Filename == "" || app.IsSaving {
		return nil
	}
	d, err := s.Persistence.Load(ctx, app.Filename)
	if err != nil {
		return err
	}
	current := s.container().Document()
	if same, err := sameDocument(current.Document, d); err != nil {
		return err
	} else if same {
		return nil
	}
	focused := current.View.FocusedCell
	if err := s.container().Dispatch(document.LoadNotebook{Document: d}); err != nil {
		return err
	}
	if d.Has(focused) {
		return s.container().Dispatch(document.FocusCell{ID: focused})
	}
	return nil
}

// sameDocument compares the stored JSON form of a and b.
func sameDocument(a, b notebook.Document) (bool, error) {
	ja, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ja, jb), nil
}

// Save stores the open notebook under its filename.
func (s *Service) Save(ctx context.Context) error {
	if s.Persistence == nil {
		return errNoPersistence
	}
	c := s.container()
	name := c.App().Filename
	if name == "" {
		return ErrNoFilename
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_ = c.Dispatch(kernel.StartSaving{})
	defer func() { _ = c.Dispatch(kernel.DoneSaving{}) }()
	if err := s.Persistence.Store(name, c.Document().Document); err != nil {
		return err
	}
	s.log().Info("notebook saved", zap.String("notebook", name))
	return nil
}

// Edit applies intents to the stored notebook name and stores the result.
// It does not touch the container.
func (s *Service) Edit(ctx context.Context, name string, intents ...Intent) (document.State, error) {
	if s.Persistence == nil {
		return document.State{}, errNoPersistence
	}
	d, err := s.Persistence.Load(ctx, name)
	if err != nil {
		return document.State{}, err
	}
	r := s.container().docs
	st := document.NewState(d)
	for _, in := range intents {
		if st, err = r.Reduce(st, in); err != nil {
			return document.State{}, err
		}
	}
	if err := s.Persistence.Store(name, st.Document); err != nil {
		return document.State{}, err
	}
	return st, nil
}

// Import reads a .ipynb file and stores it. An empty name uses the file name
// without its extension.
func (s *Service) Import(ctx context.Context, path, name string) (string, error) {
	if s.Persistence == nil {
		return "", errNoPersistence
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("app: import: %w", err)
	}
	d, err := notebook.FromNBFormat(data, uuid.NewString)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.Persistence.Store(name, d); err != nil {
		return "", err
	}
	return name, nil
}

// Export renders the stored notebook name as nbformat v4 JSON.
func (s *Service) Export(ctx context.Context, name string) ([]byte, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	d, err := s.Persistence.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return notebook.ToNBFormat(d)
}

// RunCell runs the focused cell. With advance, focus first moves to the
// next cell, creating one at the end of the notebook. Markdown and raw
// cells only move focus.
func (s *Service) RunCell(ctx context.Context, advance bool) error {
	c := s.container()
	id, target, ok := c.Document().Focused()
	if !ok {
		return nil
	}
	if advance {
		if err := c.Dispatch(document.FocusNextCell{ID: id, CreateIfAtEnd: true}); err != nil {
			return err
		}
	}
	if !target.IsCode() {
		return nil
	}

	app := c.App()
	if !app.Connected() {
		return c.Dispatch(kernel.KernelNotConnected{})
	}
	if s.Executor == nil {
		return errors.New("app: no executor configured")
	}
	if err := c.Dispatch(document.ClearOutput{ID: id}); err != nil {
		return err
	}
	notify := func(in Intent) {
		if err := c.Dispatch(in); err != nil {
			s.log().Warn("execution update dropped", zap.String("cell", id), zap.Error(err))
		}
	}
	return s.Executor.Execute(ctx, app.Channels, id, target.Source, notify)
}

// StartKernel launches the kernel spec name and replaces the current session
// with it. The notebook's kernelspec metadata is updated to match.
func (s *Service) StartKernel(ctx context.Context, name string) error {
	spec, err := kernel.FindSpec(s.SpecDirs, name)
	if err != nil {
		return err
	}
	launched, err := s.Launcher.Launch(ctx, spec)
	if err != nil {
		return err
	}

	var channels kernel.Channels
	if s.Dialer != nil {
		channels, err = s.Dialer.Dial(ctx, launched.Connection)
		if err != nil {
			if terr := launched.Process.Terminate(); terr != nil {
				s.log().Warn("kernel terminate failed", zap.String("kernel", spec.Name), zap.Error(terr))
			}
			return fmt.Errorf("app: dial %s: %w", spec.Name, err)
		}
	}

	c := s.container()
	if err := c.Dispatch(kernel.NewKernel{
		KernelSpecName: spec.Name,
		ConnectionFile: launched.ConnectionFile,
		Channels:       channels,
		Spawn:          launched.Process,
	}); err != nil {
		return err
	}
	if err := c.Dispatch(document.OverwriteMetadataField{Field: "kernelspec", Value: map[string]any{
		"name":         spec.Name,
		"display_name": spec.DisplayName,
		"language":     spec.Language,
	}}); err != nil {
		return err
	}
	if _, ok := c.Document().Document.MetadataValue("language_info"); !ok && spec.Language != "" {
		return c.Dispatch(document.SetLanguageInfo{Info: map[string]any{"name": spec.Language}})
	}
	return nil
}

// KillKernel shuts the session down.
func (s *Service) KillKernel() error {
	return s.container().Dispatch(kernel.KillKernel{})
}

// Close releases the session before the application exits.
func (s *Service) Close() error {
	return s.container().Dispatch(kernel.Exit{})
}
