package add

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"tableflip.dev/nbook/pkg/app"
	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/notebook"
	"tableflip.dev/nbook/pkg/store"
)

func init() {
	color.NoColor = true
}

func service(t *testing.T) *app.Service {
	t.Helper()
	p, err := store.Load(&store.FileConfig{Path: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	d, err := notebook.AppendCell(notebook.New(nil), cell.New(cell.Code, "a = 1"), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if d, err = notebook.AppendCell(d, cell.New(cell.Code, "b = 2"), "c2"); err != nil {
		t.Fatal(err)
	}
	if err := p.Store("nb", d); err != nil {
		t.Fatal(err)
	}
	if err := p.Store("empty", notebook.New(nil)); err != nil {
		t.Fatal(err)
	}
	return &app.Service{Persistence: p}
}

func sources(t *testing.T, svc *app.Service, name string) []string {
	t.Helper()
	d, err := svc.Persistence.Load(context.Background(), name)
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, id := range d.CellOrder() {
		c, _ := d.Cell(id)
		out = append(out, c.Source)
	}
	return out
}

func TestAdd(t *testing.T) {
	tests := map[string]struct {
		notebook string
		after    string
		want     []string
	}{
		"appends by default": {
			notebook: "nb",
			want:     []string{"a = 1", "b = 2", "new"},
		},
		"after a cell": {
			notebook: "nb",
			after:    "c1",
			want:     []string{"a = 1", "new", "b = 2"},
		},
		"into an empty notebook": {
			notebook: "empty",
			want:     []string{"new"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			svc := service(t)
			a := Add{
				Name:    tc.notebook,
				Type:    cell.Code,
				Source:  "new",
				After:   tc.after,
				Service: svc,
				Out:     &bytes.Buffer{},
			}
			if err := a.Do(context.Background()); err != nil {
				t.Fatalf("Do failed: %v", err)
			}
			if diff := cmp.Diff(tc.want, sources(t, svc, tc.notebook)); diff != "" {
				t.Errorf("unexpected sources (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAddUnknownAnchor(t *testing.T) {
	a := Add{Name: "nb", Type: cell.Code, After: "zz", Service: service(t), Out: &bytes.Buffer{}}
	if err := a.Do(context.Background()); !errors.Is(err, notebook.ErrCellNotFound) {
		t.Fatalf("expected ErrCellNotFound, got %v", err)
	}
}

func TestAddWithoutPersistence(t *testing.T) {
	if err := (&Add{Name: "nb"}).Do(context.Background()); err == nil {
		t.Fatal("expected an error without persistence")
	}
}
