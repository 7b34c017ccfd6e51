package focus

import (
	"testing"

	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/notebook"
)

func doc(t *testing.T, ids ...string) notebook.Document {
	t.Helper()
	d := notebook.New(nil)
	for _, id := range ids {
		var err error
		if d, err = notebook.AppendCell(d, cell.EmptyMarkdown(), id); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return d
}

func fixedID(id string) func() string {
	return func() string { return id }
}

func TestNextMovesForward(t *testing.T) {
	d := doc(t, "A", "B", "C")
	got, id, err := Next(d, "A", true, fixedID("new"))
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if id != "B" {
		t.Fatalf("expected B, got %q", id)
	}
	if got.Len() != 3 {
		t.Fatalf("expected no new cell, got %d cells", got.Len())
	}
}

func TestNextAtEndCreatesCell(t *testing.T) {
	d := doc(t, "A", "B")
	got, id, err := Next(d, "B", true, fixedID("new"))
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if id != "new" {
		t.Fatalf("expected focus on new cell, got %q", id)
	}
	if got.Len() != 3 {
		t.Fatalf("expected one more cell, got %d", got.Len())
	}
	if last, _ := got.At(2); last != "new" {
		t.Fatalf("expected new cell appended, got %v", got.CellOrder())
	}
	c, _ := got.Cell("new")
	if c.Type != cell.Code || c.Source != "" {
		t.Fatalf("expected empty code cell, got %+v", c)
	}
	if d.Len() != 2 {
		t.Fatalf("input document was mutated")
	}
}

func TestNextAtEndWithoutCreate(t *testing.T) {
	d := doc(t, "A", "B")
	got, id, err := Next(d, "B", false, fixedID("new"))
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if id != "B" || got.Len() != 2 {
		t.Fatalf("expected unchanged state, got focus %q and %d cells", id, got.Len())
	}
}

func TestNextUnknownFocusAppends(t *testing.T) {
	d := doc(t, "A", "B")
	got, id, err := Next(d, "ghost", true, fixedID("new"))
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if last, _ := got.At(got.Len() - 1); last != "new" || id != "new" {
		t.Fatalf("expected append of new cell, got %v focus %q", got.CellOrder(), id)
	}
}

func TestNextDuplicateGeneratedID(t *testing.T) {
	d := doc(t, "A")
	if _, id, err := Next(d, "A", true, fixedID("A")); err == nil || id != "A" {
		t.Fatalf("expected error and unchanged focus, got %q %v", id, err)
	}
}

func TestPrevious(t *testing.T) {
	d := doc(t, "A", "B", "C")
	if id := Previous(d, "C"); id != "B" {
		t.Fatalf("expected B, got %q", id)
	}
	if id := Previous(d, "A"); id != "A" {
		t.Fatalf("expected clamp to A, got %q", id)
	}
	if id := Previous(notebook.New(nil), "A"); id != "" {
		t.Fatalf("expected no focus in empty document, got %q", id)
	}
}
