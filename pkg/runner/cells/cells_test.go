package cells

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/notebook"
	"tableflip.dev/nbook/pkg/printers"
	"tableflip.dev/nbook/pkg/store"
)

func init() {
	color.NoColor = true
}

func persistence(t *testing.T) store.Persistence {
	t.Helper()
	p, err := store.Load(&store.FileConfig{Path: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	d, err := notebook.AppendCell(notebook.New(nil), cell.New(cell.Markdown, "# Title"), "m1")
	if err != nil {
		t.Fatal(err)
	}
	if d, err = notebook.AppendCell(d, cell.New(cell.Code, "x = 1"), "c1"); err != nil {
		t.Fatal(err)
	}
	if err := p.Store("analysis", d); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCellsPretty(t *testing.T) {
	var buf bytes.Buffer
	c := Cells{Name: "analysis", ShowID: true, Persistence: persistence(t), Out: &buf}
	if err := c.Do(context.Background()); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"analysis - 2 cells", "m1", "# Title", "c1", "x = 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCellsJSON(t *testing.T) {
	var buf bytes.Buffer
	c := Cells{Name: "analysis", Format: "json", Persistence: persistence(t), Out: &buf}
	if err := c.Do(context.Background()); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	var rows []printers.CellRow
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("bad json %q: %v", buf.String(), err)
	}
	if len(rows) != 2 || rows[0].ID != "m1" || rows[1].Source != "x = 1" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestCellsMissingNotebook(t *testing.T) {
	c := Cells{Name: "nope", Persistence: persistence(t), Out: &bytes.Buffer{}}
	if err := c.Do(context.Background()); err == nil {
		t.Fatal("expected an error for a missing notebook")
	}
}
