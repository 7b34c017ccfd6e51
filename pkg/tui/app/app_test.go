package teaui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/ansi"

	"tableflip.dev/nbook/pkg/app"
	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/document"
	"tableflip.dev/nbook/pkg/kernel"
	"tableflip.dev/nbook/pkg/notebook"
)

func stripANSI(s string) string {
	var b strings.Builder
	ansiSeq := false
	for _, r := range s {
		if r == ansi.Marker {
			ansiSeq = true
			continue
		}
		if ansiSeq {
			if ansi.IsTerminator(r) {
				ansiSeq = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func press(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: []rune(s)[0], Text: s}
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	d := notebook.New(nil)
	var err error
	for _, c := range []struct {
		id  string
		typ cell.Type
		src string
	}{
		{"c1", cell.Code, "print(1)"},
		{"c2", cell.Markdown, ""},
		{"c3", cell.Code, "x = 3"},
	} {
		if d, err = notebook.AppendCell(d, cell.New(c.typ, c.src), c.id); err != nil {
			t.Fatal(err)
		}
	}

	n := 0
	container := app.NewContainer(nil).WithIDs(func() string {
		n++
		return "new" + string(rune('0'+n))
	})
	svc := &app.Service{Container: container}
	if err := svc.Dispatch(document.LoadNotebook{Document: d}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Dispatch(kernel.ChangeFilename{Filename: "analysis"}); err != nil {
		t.Fatal(err)
	}

	m := New(svc)
	t.Cleanup(m.cancel)
	m.Update(tea.WindowSizeMsg{Width: 96, Height: 30})
	return m
}

func (m *Model) order() []string {
	return m.svc.Container.Document().Document.CellOrder()
}

func (m *Model) focusedID() string {
	return m.svc.Container.Document().View.FocusedCell
}

func TestViewRendersHeaderCellsAndFooter(t *testing.T) {
	m := newTestModel(t)

	view := stripANSI(m.View())
	for _, want := range []string{"analysis", "[not connected]", "In [ ]", "print(1)", "x = 3", "NORMAL"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view; view=%q", want, view)
		}
	}
}

func TestFocusMovesWithJK(t *testing.T) {
	m := newTestModel(t)

	m.Update(press("j"))
	m.Update(press("j"))
	if got := m.focusedID(); got != "c3" {
		t.Fatalf("expected c3 focused, got %q", got)
	}
	m.Update(press("j"))
	if got := m.focusedID(); got != "c3" {
		t.Fatalf("expected focus to stay on last cell, got %q", got)
	}
	m.Update(press("k"))
	if got := m.focusedID(); got != "c2" {
		t.Fatalf("expected c2 focused, got %q", got)
	}
}

func TestAddCellFocusesIt(t *testing.T) {
	m := newTestModel(t)

	m.Update(press("a"))
	if got := m.order(); len(got) != 4 || got[1] != "new1" {
		t.Fatalf("expected new1 after c1, got %v", got)
	}
	if got := m.focusedID(); got != "new1" {
		t.Fatalf("expected new cell focused, got %q", got)
	}

	m.Update(press("b"))
	if got := m.order(); got[1] != "new2" || got[2] != "new1" {
		t.Fatalf("expected new2 before new1, got %v", got)
	}
	if got := m.focusedID(); got != "new2" {
		t.Fatalf("expected new2 focused, got %q", got)
	}
}

func TestDoubleDRemovesFocusedCell(t *testing.T) {
	m := newTestModel(t)

	m.Update(press("d"))
	if len(m.order()) != 3 {
		t.Fatalf("expected single d to keep the cell")
	}
	m.Update(press("d"))
	if got := m.order(); len(got) != 2 || got[0] != "c2" {
		t.Fatalf("expected c1 removed, got %v", got)
	}
	if got := m.focusedID(); got != "c2" {
		t.Fatalf("expected focus on c2, got %q", got)
	}
}

func TestMoveCellDownAndUp(t *testing.T) {
	m := newTestModel(t)

	m.Update(press("J"))
	if got := m.order(); got[0] != "c2" || got[1] != "c1" {
		t.Fatalf("expected c1 moved below c2, got %v", got)
	}
	m.Update(press("K"))
	if got := m.order(); got[0] != "c1" {
		t.Fatalf("expected c1 back on top, got %v", got)
	}
}

func TestStickyCellsRenderFirst(t *testing.T) {
	m := newTestModel(t)
	m.Update(press("G"))
	m.Update(press("s"))

	if !m.svc.Container.Document().IsSticky("c3") {
		t.Fatalf("expected c3 to be sticky")
	}
	view := stripANSI(m.View())
	pinned := strings.Index(view, "^ In [ ] x = 3")
	first := strings.Index(view, "print(1)")
	if pinned < 0 || first < 0 || pinned > first {
		t.Fatalf("expected pinned c3 above the cell list; view=%q", view)
	}
}

func TestEditCommitsSource(t *testing.T) {
	m := newTestModel(t)

	m.Update(press("i"))
	if m.mode != modeInsert || m.editing != "c1" {
		t.Fatalf("expected insert mode on c1, got mode=%v editing=%q", m.mode, m.editing)
	}
	m.Update(press("!"))
	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})

	if m.mode != modeNormal {
		t.Fatalf("expected normal mode after esc, got %v", m.mode)
	}
	c, _ := m.svc.Container.Document().Document.Cell("c1")
	if c.Source != "print(1)!" {
		t.Fatalf("expected edited source, got %q", c.Source)
	}
}

func TestRunWithoutKernelReportsError(t *testing.T) {
	m := newTestModel(t)

	msg := m.runCell(true)()
	if _, ok := msg.(stateChangedMsg); !ok {
		t.Fatalf("expected stateChangedMsg, got %T", msg)
	}
	m.Update(msg)

	if got := m.focusedID(); got != "c2" {
		t.Fatalf("expected focus advanced to c2, got %q", got)
	}
	view := stripANSI(m.View())
	if !strings.Contains(view, "not connected to a runtime") {
		t.Fatalf("expected kernel error in footer; view=%q", view)
	}
}

func TestCommandMode(t *testing.T) {
	m := newTestModel(t)

	m.Update(press(":"))
	if m.mode != modeCommand {
		t.Fatalf("expected command mode, got %v", m.mode)
	}
	for _, r := range "bogus" {
		m.Update(press(string(r)))
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.mode != modeNormal {
		t.Fatalf("expected normal mode after enter, got %v", m.mode)
	}
	if !strings.Contains(m.status, `unknown command "bogus"`) {
		t.Fatalf("expected unknown command status, got %q", m.status)
	}
}

func TestChangeTypeKeepsPosition(t *testing.T) {
	m := newTestModel(t)
	m.executeCommand("markdown", new([]tea.Cmd))

	order := m.order()
	if len(order) != 3 || order[0] != "new1" {
		t.Fatalf("expected replacement cell in first position, got %v", order)
	}
	c, _ := m.svc.Container.Document().Document.Cell("new1")
	if c.Type != cell.Markdown || c.Source != "print(1)" {
		t.Fatalf("expected markdown cell with old source, got %+v", c)
	}
	if got := m.focusedID(); got != "new1" {
		t.Fatalf("expected replacement focused, got %q", got)
	}
}

func TestOutputText(t *testing.T) {
	got := outputText([]cell.Output{
		cell.Output(`{"output_type":"stream","name":"stdout","text":["a\n","b\n"]}`),
		cell.Output(`{"output_type":"execute_result","data":{"text/plain":"42"}}`),
		cell.Output(`{"output_type":"error","ename":"ValueError","evalue":"bad"}`),
		cell.Output(`{"output_type":"display_data","data":{"image/png":"..."}}`),
	})
	want := []renderedOutput{
		{Text: "a\nb"},
		{Text: "42"},
		{Text: "ValueError: bad", Error: true},
		{Text: "<image/png>"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d outputs, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("output %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}
