package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/document"
	"tableflip.dev/nbook/pkg/kernel"
	"tableflip.dev/nbook/pkg/notebook"
	"tableflip.dev/nbook/pkg/store"
)

type memoryPersistence struct {
	mu        sync.Mutex
	notebooks map[string]notebook.Document
	stores    int
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{notebooks: make(map[string]notebook.Document)}
}

func (m *memoryPersistence) Notebooks(context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.notebooks))
	for name := range m.notebooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *memoryPersistence) Load(_ context.Context, name string) (notebook.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.notebooks[name]
	if !ok {
		return notebook.Document{}, fmt.Errorf("%w: %q", store.ErrNotebookNotFound, name)
	}
	return d, nil
}

func (m *memoryPersistence) Store(name string, d notebook.Document) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("missing name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notebooks[name] = d
	m.stores++
	return nil
}

func (m *memoryPersistence) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notebooks, name)
	return nil
}

func (m *memoryPersistence) Watch(context.Context) (<-chan store.Event, error) {
	return nil, nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
}

func seeded(t *testing.T, cells ...cell.Cell) notebook.Document {
	t.Helper()
	d := notebook.New(map[string]any{"language_info": map[string]any{"name": "python"}})
	for i, c := range cells {
		var err error
		if d, err = notebook.AppendCell(d, c, fmt.Sprintf("c%d", i+1)); err != nil {
			t.Fatal(err)
		}
	}
	return d
}

func newService(t *testing.T, p *memoryPersistence) *Service {
	t.Helper()
	return &Service{
		Persistence: p,
		Container:   NewContainer(nil).WithIDs(sequentialIDs()),
	}
}

func TestOpenExistingNotebook(t *testing.T) {
	p := newMemoryPersistence()
	p.notebooks["intro"] = seeded(t, cell.New(cell.Code, "1"), cell.New(cell.Markdown, "# hi"))
	svc := newService(t, p)

	if err := svc.Open(context.Background(), "intro"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := svc.Container.Document()
	if diff := cmp.Diff([]string{"c1", "c2"}, st.Document.CellOrder()); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	if st.View.FocusedCell != "c1" {
		t.Fatalf("expected focus c1, got %q", st.View.FocusedCell)
	}
	if got := svc.Container.App().Filename; got != "intro" {
		t.Fatalf("expected filename intro, got %q", got)
	}
}

func TestOpenUnknownNotebookStartsFresh(t *testing.T) {
	svc := newService(t, newMemoryPersistence())
	if err := svc.Open(context.Background(), "new"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := svc.Container.Document()
	if st.Document.Len() != 1 {
		t.Fatalf("expected one cell, got %d", st.Document.Len())
	}
	_, c, ok := st.Focused()
	if !ok || !c.IsCode() || c.Source != "" {
		t.Fatalf("expected empty focused code cell, got %+v", c)
	}
}

func TestSaveStoresAndClearsSavingFlag(t *testing.T) {
	p := newMemoryPersistence()
	p.notebooks["intro"] = seeded(t, cell.New(cell.Code, "1"))
	svc := newService(t, p)
	ctx := context.Background()

	if err := svc.Save(ctx); !errors.Is(err, ErrNoFilename) {
		t.Fatalf("expected ErrNoFilename, got %v", err)
	}
	if err := svc.Open(ctx, "intro"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Dispatch(document.UpdateSource{ID: "c1", Source: "2"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Save(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Container.App().IsSaving {
		t.Fatalf("expected saving flag cleared")
	}
	c, _ := p.notebooks["intro"].Cell("c1")
	if c.Source != "2" {
		t.Fatalf("expected stored source 2, got %q", c.Source)
	}
}

func TestEditAppliesIntentsToStoredNotebook(t *testing.T) {
	p := newMemoryPersistence()
	p.notebooks["nb"] = seeded(t, cell.New(cell.Code, "a"), cell.New(cell.Code, "b"), cell.New(cell.Code, "c"))
	svc := newService(t, p)

	st, err := svc.Edit(context.Background(), "nb",
		document.MoveCell{ID: "c1", DestinationID: "c3"},
		document.MergeCellAfter{ID: "c2"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"c2", "c1"}, p.notebooks["nb"].CellOrder()); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	c, _ := st.Document.Cell("c2")
	if c.Source != "b\n\nc" {
		t.Fatalf("expected merged source, got %q", c.Source)
	}

	before := p.stores
	_, err = svc.Edit(context.Background(), "nb", document.MoveCell{ID: "zz", DestinationID: "c1"})
	if !errors.Is(err, notebook.ErrCellNotFound) {
		t.Fatalf("expected ErrCellNotFound, got %v", err)
	}
	if p.stores != before {
		t.Fatalf("expected failed edit not stored")
	}
}

func TestImportExport(t *testing.T) {
	p := newMemoryPersistence()
	svc := newService(t, p)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "analysis.ipynb")
	nb := `{"nbformat":4,"nbformat_minor":5,"metadata":{"language_info":{"name":"python"}},
		"cells":[{"id":"x1","cell_type":"code","source":["a = 1\n","a"],"outputs":[],"execution_count":null,"metadata":{}}]}`
	if err := os.WriteFile(path, []byte(nb), 0o644); err != nil {
		t.Fatal(err)
	}

	name, err := svc.Import(ctx, path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "analysis" {
		t.Fatalf("expected name analysis, got %q", name)
	}
	c, ok := p.notebooks["analysis"].Cell("x1")
	if !ok || c.Source != "a = 1\na" {
		t.Fatalf("expected imported cell, got %+v", c)
	}

	out, err := svc.Export(ctx, "analysis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), `"nbformat": 4`) {
		t.Fatalf("expected nbformat 4 output, got %s", out)
	}
}

type recordedRun struct {
	id, source string
}

type fakeExecutor struct {
	runs []recordedRun
}

func (f *fakeExecutor) Execute(_ context.Context, _ kernel.Channels, id, source string, notify func(Intent)) error {
	f.runs = append(f.runs, recordedRun{id: id, source: source})
	notify(document.UpdateStatus{ID: id, Status: document.StatusBusy})
	notify(document.UpdateExecutionCount{ID: id, Count: len(f.runs)})
	notify(document.UpdateStatus{ID: id, Status: document.StatusIdle})
	return nil
}

type fakeSpawn struct{ terminated int }

func (f *fakeSpawn) Terminate() error {
	f.terminated++
	return nil
}

func connected(t *testing.T, svc *Service) *fakeSpawn {
	t.Helper()
	sp := &fakeSpawn{}
	if err := svc.Dispatch(kernel.NewKernel{KernelSpecName: "python3", Spawn: sp}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Dispatch(kernel.SetExecutionState{ExecutionState: kernel.Idle}); err != nil {
		t.Fatal(err)
	}
	return sp
}

func TestRunCellNotConnected(t *testing.T) {
	p := newMemoryPersistence()
	p.notebooks["nb"] = seeded(t, cell.New(cell.Code, "1"))
	svc := newService(t, p)
	if err := svc.Open(context.Background(), "nb"); err != nil {
		t.Fatal(err)
	}

	if err := svc.RunCell(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := svc.Container.App().Error; got != kernel.NotConnectedMessage {
		t.Fatalf("expected not connected error, got %q", got)
	}
}

func TestRunCellAndAdvance(t *testing.T) {
	p := newMemoryPersistence()
	p.notebooks["nb"] = seeded(t, cell.New(cell.Code, "x = 1"))
	exec := &fakeExecutor{}
	svc := newService(t, p)
	svc.Executor = exec
	ctx := context.Background()
	if err := svc.Open(ctx, "nb"); err != nil {
		t.Fatal(err)
	}
	connected(t, svc)

	if err := svc.RunCell(ctx, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]recordedRun{{id: "c1", source: "x = 1"}}, exec.runs, cmp.AllowUnexported(recordedRun{})); diff != "" {
		t.Fatalf("runs (-want +got):\n%s", diff)
	}
	st := svc.Container.Document()
	if diff := cmp.Diff([]string{"c1", "n1"}, st.Document.CellOrder()); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	if st.View.FocusedCell != "n1" {
		t.Fatalf("expected focus on created cell, got %q", st.View.FocusedCell)
	}
	c, _ := st.Document.Cell("c1")
	if c.ExecutionCount == nil || *c.ExecutionCount != 1 {
		t.Fatalf("expected execution count 1, got %v", c.ExecutionCount)
	}
	if st.Running("c1") {
		t.Fatalf("expected c1 idle after run")
	}
}

func TestRunMarkdownOnlyAdvances(t *testing.T) {
	p := newMemoryPersistence()
	p.notebooks["nb"] = seeded(t, cell.New(cell.Markdown, "# title"), cell.New(cell.Code, "1"))
	exec := &fakeExecutor{}
	svc := newService(t, p)
	svc.Executor = exec
	ctx := context.Background()
	if err := svc.Open(ctx, "nb"); err != nil {
		t.Fatal(err)
	}
	connected(t, svc)

	if err := svc.RunCell(ctx, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.runs) != 0 {
		t.Fatalf("expected markdown not executed, got %d runs", len(exec.runs))
	}
	if got := svc.Container.Document().View.FocusedCell; got != "c2" {
		t.Fatalf("expected focus c2, got %q", got)
	}
}

func TestCloseReleasesSession(t *testing.T) {
	svc := newService(t, newMemoryPersistence())
	sp := connected(t, svc)

	if err := svc.Close(); err != nil {
		t.Fatal(err)
	}
	if sp.terminated != 1 {
		t.Fatalf("expected terminate once, got %d", sp.terminated)
	}
	if svc.Container.App().Connected() {
		t.Fatalf("expected disconnected")
	}
}

func TestNotebooksWithoutPersistence(t *testing.T) {
	svc := &Service{}
	if _, err := svc.Notebooks(context.Background()); err == nil {
		t.Fatalf("expected error without persistence")
	}
}

func TestReloadPicksUpOutsideChanges(t *testing.T) {
	p := newMemoryPersistence()
	p.notebooks["intro"] = seeded(t, cell.New(cell.Code, "1"), cell.New(cell.Code, "2"))
	svc := newService(t, p)
	ctx := context.Background()
	if err := svc.Open(ctx, "intro"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Dispatch(document.FocusCell{ID: "c2"}); err != nil {
		t.Fatal(err)
	}

	changes := 0
	svc.Container.OnChange(func() { changes++ })
	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changes != 0 {
		t.Fatalf("expected unchanged notebook to skip reload, got %d changes", changes)
	}

	p.notebooks["intro"] = notebook.UpdateSource(p.notebooks["intro"], "c1", "updated")
	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := svc.Container.Document()
	if c, _ := st.Document.Cell("c1"); c.Source != "updated" {
		t.Fatalf("expected reloaded source, got %q", c.Source)
	}
	if st.View.FocusedCell != "c2" {
		t.Fatalf("expected focus kept on c2, got %q", st.View.FocusedCell)
	}
}

func TestReloadKeepsViewStateOfLiveCells(t *testing.T) {
	p := newMemoryPersistence()
	p.notebooks["intro"] = seeded(t, cell.New(cell.Code, "1"), cell.New(cell.Code, "2"))
	svc := newService(t, p)
	ctx := context.Background()
	if err := svc.Open(ctx, "intro"); err != nil {
		t.Fatal(err)
	}
	for _, in := range []Intent{
		document.ToggleStickyCell{ID: "c2"},
		document.UpdateStatus{ID: "c1", Status: document.StatusBusy},
	} {
		if err := svc.Dispatch(in); err != nil {
			t.Fatal(err)
		}
	}

	p.notebooks["intro"] = notebook.UpdateSource(p.notebooks["intro"], "c2", "changed")
	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := svc.Container.Document()
	if c, _ := st.Document.Cell("c2"); c.Source != "changed" {
		t.Fatalf("expected reloaded source, got %q", c.Source)
	}
	if !st.IsSticky("c2") {
		t.Fatalf("expected c2 to stay sticky, got %v", st.View.StickyCells)
	}
	if !st.Running("c1") {
		t.Fatalf("expected c1 to stay busy, got %v", st.View.CellStatuses)
	}

	p.notebooks["intro"] = notebook.RemoveCell(p.notebooks["intro"], "c2")
	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st := svc.Container.Document(); st.IsSticky("c2") || len(st.View.StickyCells) != 0 {
		t.Fatalf("expected sticky entry of removed cell dropped, got %v", st.View.StickyCells)
	}
}
