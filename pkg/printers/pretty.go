package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/document"
	"tableflip.dev/nbook/pkg/kernel"
)

type PrettyPrint struct {
	ShowID bool
	// Width bounds a cell preview line; zero means 80.
	Width int
	Out   io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) width() int {
	if pp.Width <= 0 {
		return 80
	}
	return pp.Width
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " cell")
	default:
		_, _ = c.Fprintln(pp.out(), " cells")
	}
}

// Prompt is the left gutter for a cell: In [n] for code, the type otherwise.
func Prompt(c cell.Cell) string {
	if !c.IsCode() {
		return string(c.Type)
	}
	if c.ExecutionCount == nil {
		return "In [ ]"
	}
	return fmt.Sprintf("In [%d]", *c.ExecutionCount)
}

// Notebook prints every cell of st in document order, sticky cells first.
func (pp *PrettyPrint) Notebook(st document.State) {
	order := st.Document.CellOrder()
	if len(order) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	faint := color.New(color.Faint)
	focus := color.New(color.FgHiCyan, color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, id := range append(st.StickyOrder(), order...) {
		c, _ := st.Document.Cell(id)
		marker := " "
		switch {
		case st.Running(id):
			marker = "*"
		case st.IsSticky(id):
			marker = "^"
		}
		prompt := Prompt(c)
		if id == st.View.FocusedCell {
			prompt = focus.Sprint(prompt)
		}
		row := []interface{}{marker, prompt, pp.preview(c)}
		if n := len(c.Outputs); n > 0 {
			row = append(row, faint.Sprintf("[%d out]", n))
		} else {
			row = append(row, "")
		}
		if pp.ShowID {
			row = append([]interface{}{y.Sprint(id)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) preview(c cell.Cell) string {
	first, _, more := strings.Cut(c.Source, "\n")
	if more {
		first += " ..."
	}
	return truncate.StringWithTail(first, uint(pp.width()), "…")
}

// Notebooks prints stored notebook names.
func (pp *PrettyPrint) Notebooks(names []string) {
	if len(names) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}
	for _, name := range names {
		_, _ = fmt.Fprintf(pp.out(), "  %s\n", name)
	}
	_, _ = fmt.Fprintln(pp.out(), "")
}

// Kernels prints a table of kernel specs, marking the default.
func (pp *PrettyPrint) Kernels(specs map[string]kernel.Spec, defaultName string) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("", bold.Sprint("Name"), bold.Sprint("Display"), bold.Sprint("Language"), bold.Sprint("Path"))
	for _, name := range kernel.SortedNames(specs) {
		s := specs[name]
		mark := ""
		if name == defaultName {
			mark = "*"
		}
		tbl.AddRow(mark, name, s.DisplayName, s.Language, s.Dir)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Pairs prints key/value rows, keys right aligned.
func (pp *PrettyPrint) Pairs(rows [][2]string) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, r := range rows {
		tbl.AddRow(bold.Sprint(r[0]), r[1])
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}
