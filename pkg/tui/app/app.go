// Package teaui hosts the Bubble Tea program for the nbook TUI.
package teaui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textarea"
	"github.com/charmbracelet/bubbles/v2/textinput"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/nbook/pkg/app"
	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/document"
	"tableflip.dev/nbook/pkg/printers"
	"tableflip.dev/nbook/pkg/store"
	"tableflip.dev/nbook/pkg/tui/theme"
)

type mode int

const (
	modeNormal mode = iota
	modeInsert
	modeCommand
)

func (md mode) String() string {
	switch md {
	case modeInsert:
		return "INSERT"
	case modeCommand:
		return "COMMAND"
	default:
		return "NORMAL"
	}
}

var errServiceUnavailable = errors.New("service unavailable")

const ddWindow = 600 * time.Millisecond

// Model contains UI state
type Model struct {
	svc    *app.Service
	ctx    context.Context
	cancel context.CancelFunc
	mode   mode

	termWidth  int
	termHeight int

	body       viewport.Model
	bodyHeight int
	top        int
	lines      int
	focusLine  int
	editor     textarea.Model
	editing    string
	input      textinput.Model

	theme theme.Theme
	md    markdown

	status     string
	awaitingDD bool
	lastDTime  time.Time

	// offsets maps a cell id to its first line in the body.
	offsets map[string]int

	watchCh     <-chan store.Event
	watchCancel context.CancelFunc
}

// New returns a model over svc. svc.Container must already hold the
// notebook to edit.
func New(svc *app.Service) *Model {
	ti := textinput.New()
	ti.Placeholder = "command"
	ti.CharLimit = 256
	ti.Prompt = ":"

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Placeholder = "source"

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		svc:     svc,
		ctx:     ctx,
		cancel:  cancel,
		mode:    modeNormal,
		body:    viewport.New(viewport.WithWidth(80), viewport.WithHeight(20)),
		editor:  ta,
		input:   ti,
		theme:   theme.Default(),
		offsets: make(map[string]int),
	}
	m.termWidth = 80
	m.termHeight = 24
	m.applySizes()
	return m
}

type stateChangedMsg struct{}

type errMsg struct{ err error }

type statusMsg struct{ text string }

type watchStartedMsg struct {
	ch     <-chan store.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event store.Event
}

type watchStoppedMsg struct{}

// Init starts watching the store.
func (m *Model) Init() tea.Cmd {
	return startWatchCmd(m.ctx, m.svc)
}

func startWatchCmd(parent context.Context, svc *app.Service) tea.Cmd {
	if svc == nil || svc.Persistence == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := svc.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

func (m *Model) handleWatchEvent(ev store.Event, cmds *[]tea.Cmd) {
	filename := m.svc.Container.App().Filename
	if ev.Type == store.EventNotebookChanged && ev.Name != filename {
		return
	}
	svc := m.svc
	ctx := m.ctx
	*cmds = append(*cmds, func() tea.Msg {
		if err := svc.Reload(ctx); err != nil {
			return errMsg{err}
		}
		return stateChangedMsg{}
	})
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.applySizes()
	case errMsg:
		m.setStatus("ERR: " + msg.err.Error())
	case statusMsg:
		m.setStatus(msg.text)
	case stateChangedMsg:
	case watchStartedMsg:
		if msg.err != nil {
			m.setStatus("ERR: watch " + msg.err.Error())
			break
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		if cmd := m.waitForWatch(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case watchEventMsg:
		m.handleWatchEvent(msg.event, &cmds)
		if cmd := m.waitForWatch(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case watchStoppedMsg:
		m.stopWatch()
	case tea.KeyPressMsg:
		m.handleKeyPress(msg, &cmds)
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyPress(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quit(cmds)
		return
	}
	switch m.mode {
	case modeInsert:
		m.handleInsertKey(msg, cmds)
	case modeCommand:
		m.handleCommandKey(msg, cmds)
	default:
		m.handleNormalKey(msg, cmds)
	}
}

func (m *Model) handleNormalKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	key := msg.String()
	if key != "d" {
		m.awaitingDD = false
	}
	id, _, _ := m.focused()

	switch key {
	case ":":
		m.enterCommandMode(cmds)
	case "j", "down":
		m.dispatch(document.FocusNextCell{ID: id})
	case "k", "up":
		m.dispatch(document.FocusPreviousCell{ID: id})
	case "g":
		if first, ok := m.svc.Container.Document().Document.At(0); ok {
			m.dispatch(document.FocusCell{ID: first})
		}
	case "G":
		d := m.svc.Container.Document().Document
		if last, ok := d.At(d.Len() - 1); ok {
			m.dispatch(document.FocusCell{ID: last})
		}
	case "shift+enter", "alt+enter":
		*cmds = append(*cmds, m.runCell(true))
	case "ctrl+enter", "ctrl+r":
		*cmds = append(*cmds, m.runCell(false))
	case "a":
		m.insertCell(document.NewCellAfter{ID: id, Type: cell.Code}, m.indexOf(id)+1)
	case "b":
		m.insertCell(document.NewCellBefore{ID: id, Type: cell.Code}, max(m.indexOf(id), 0))
	case "m":
		m.dispatch(document.MergeCellAfter{ID: id})
	case "d":
		if id == "" {
			return
		}
		if m.awaitingDD && time.Since(m.lastDTime) < ddWindow {
			m.dispatch(document.RemoveCell{ID: id})
			m.awaitingDD = false
		} else {
			m.awaitingDD = true
			m.lastDTime = time.Now()
		}
	case "J":
		if next, ok := m.neighbor(id, 1); ok {
			m.dispatch(document.MoveCell{ID: id, DestinationID: next})
		}
	case "K":
		if prev, ok := m.neighbor(id, -1); ok {
			m.dispatch(document.MoveCell{ID: id, DestinationID: prev, Above: true})
		}
	case "s":
		m.dispatch(document.ToggleStickyCell{ID: id})
	case "x":
		m.dispatch(document.ClearOutput{ID: id})
	case "i", "enter":
		m.beginEdit(cmds)
	case "pgdown":
		m.scroll(m.bodyHeight / 2)
	case "pgup":
		m.scroll(-m.bodyHeight / 2)
	}
}

func (m *Model) handleInsertKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+s":
		m.commitEdit()
		return
	case "shift+enter", "alt+enter":
		m.commitEdit()
		*cmds = append(*cmds, m.runCell(true))
		return
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	*cmds = append(*cmds, cmd)
}

func (m *Model) handleCommandKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "enter":
		line := strings.TrimSpace(m.input.Value())
		m.exitCommandMode()
		m.executeCommand(line, cmds)
		return
	case "esc":
		m.exitCommandMode()
		return
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	*cmds = append(*cmds, cmd)
}

func (m *Model) enterCommandMode(cmds *[]tea.Cmd) {
	m.mode = modeCommand
	m.input.Reset()
	if cmd := m.input.Focus(); cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) exitCommandMode() {
	m.input.Blur()
	m.input.Reset()
	m.mode = modeNormal
}

func (m *Model) executeCommand(line string, cmds *[]tea.Cmd) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "":
	case "w":
		*cmds = append(*cmds, m.save())
	case "q", "quit":
		m.quit(cmds)
	case "wq":
		*cmds = append(*cmds, tea.Sequence(m.save(), tea.Quit))
	case "kernel":
		if arg == "" {
			m.setStatus("usage: kernel <name>")
			return
		}
		*cmds = append(*cmds, m.startKernel(arg))
	case "kill":
		if err := m.svc.KillKernel(); err != nil {
			m.setStatus("ERR: " + err.Error())
			return
		}
		m.setStatus("kernel stopped")
	case "markdown", "code", "raw":
		m.changeType(cell.Type(name))
	default:
		m.setStatus(fmt.Sprintf("unknown command %q", name))
	}
}

func (m *Model) beginEdit(cmds *[]tea.Cmd) {
	id, c, ok := m.focused()
	if !ok {
		return
	}
	m.editing = id
	m.editor.SetValue(c.Source)
	m.mode = modeInsert
	if cmd := m.editor.Focus(); cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) commitEdit() {
	if m.editing != "" {
		m.dispatch(document.UpdateSource{ID: m.editing, Source: m.editor.Value()})
	}
	m.editor.Blur()
	m.editing = ""
	m.mode = modeNormal
}

// changeType replaces the focused cell with one of type t holding the same
// source, keeping its position.
func (m *Model) changeType(t cell.Type) {
	id, c, ok := m.focused()
	if !ok || c.Type == t {
		return
	}
	if !m.insertCell(document.NewCellAfter{ID: id, Type: t, Source: c.Source}, m.indexOf(id)+1) {
		return
	}
	newID := m.svc.Container.Document().View.FocusedCell
	m.dispatch(document.RemoveCell{ID: id})
	m.dispatch(document.FocusCell{ID: newID})
}

// insertCell applies an insert intent and focuses the cell that lands at
// index.
func (m *Model) insertCell(in document.Intent, index int) bool {
	if !m.dispatch(in) {
		return false
	}
	if id, ok := m.svc.Container.Document().Document.At(index); ok {
		m.dispatch(document.FocusCell{ID: id})
	}
	return true
}

func (m *Model) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return m.svc.Container.Document().Document.IndexOf(id)
}

func (m *Model) dispatch(in document.Intent) bool {
	if m.svc == nil {
		m.setStatus("ERR: " + errServiceUnavailable.Error())
		return false
	}
	if err := m.svc.Dispatch(in); err != nil {
		m.setStatus("ERR: " + err.Error())
		return false
	}
	return true
}

func (m *Model) focused() (string, cell.Cell, bool) {
	if m.svc == nil {
		return "", cell.Cell{}, false
	}
	return m.svc.Container.Document().Focused()
}

func (m *Model) neighbor(id string, delta int) (string, bool) {
	d := m.svc.Container.Document().Document
	i := d.IndexOf(id)
	if i < 0 {
		return "", false
	}
	return d.At(i + delta)
}

func (m *Model) runCell(advance bool) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		if err := svc.RunCell(ctx, advance); err != nil {
			return errMsg{err}
		}
		return stateChangedMsg{}
	}
}

func (m *Model) save() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		if err := svc.Save(ctx); err != nil {
			return errMsg{err}
		}
		return statusMsg{text: "saved " + svc.Container.App().Filename}
	}
}

func (m *Model) startKernel(name string) tea.Cmd {
	m.setStatus("starting " + name)
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		if err := svc.StartKernel(ctx, name); err != nil {
			return errMsg{err}
		}
		return statusMsg{text: "kernel " + name + " started"}
	}
}

func (m *Model) quit(cmds *[]tea.Cmd) {
	*cmds = append(*cmds, tea.Quit)
}

func (m *Model) setStatus(msg string) {
	m.status = msg
}

// applySizes recalculates component sizes based on current terminal size.
func (m *Model) applySizes() {
	if m.termWidth == 0 || m.termHeight == 0 {
		return
	}
	// header + footer (status and mode lines)
	m.bodyHeight = max(m.termHeight-3, 1)
	m.body.SetWidth(m.termWidth)
	m.body.SetHeight(m.bodyHeight)
	m.editor.SetWidth(max(m.termWidth-12, 10))
	m.editor.SetHeight(max(m.bodyHeight/3, 3))
	m.refresh()
}

// refresh re-renders the body and scrolls the focused cell into view.
func (m *Model) refresh() {
	if m.svc == nil {
		return
	}
	st := m.svc.Container.Document()
	m.body.SetContent(m.renderCells(st))

	if start, ok := m.offsets[st.View.FocusedCell]; ok && start != m.focusLine {
		m.focusLine = start
		switch {
		case start < m.top:
			m.top = start
		case start >= m.top+m.bodyHeight:
			m.top = start - m.bodyHeight/2
		}
	}
	m.scroll(0)
}

// scroll moves the body by delta lines, clamped to the content.
func (m *Model) scroll(delta int) {
	m.top = min(m.top+delta, m.lines-m.bodyHeight)
	m.top = max(m.top, 0)
	m.body.SetYOffset(m.top)
}

func (m *Model) renderCells(st document.State) string {
	width := max(m.termWidth-2, 20)
	lines := 0
	var blocks []string
	for k := range m.offsets {
		delete(m.offsets, k)
	}

	if sticky := st.StickyOrder(); len(sticky) > 0 {
		for _, id := range sticky {
			c, _ := st.Document.Cell(id)
			head := m.theme.Cell.Pinned.Render("^ " + printers.Prompt(c) + " " + c.Summary())
			blocks = append(blocks, head)
			lines += lipgloss.Height(head)
		}
		rule := strings.Repeat("─", width)
		blocks = append(blocks, rule)
		lines++
	}

	for _, id := range st.Document.CellOrder() {
		c, _ := st.Document.Cell(id)
		m.offsets[id] = lines
		block := m.renderCell(st, id, c, width)
		blocks = append(blocks, block)
		lines += lipgloss.Height(block)
	}
	m.lines = lines
	if len(blocks) == 0 {
		return m.theme.Footer.Help.Render("empty notebook · a to add a cell")
	}
	return strings.Join(blocks, "\n")
}

func (m *Model) renderCell(st document.State, id string, c cell.Cell, width int) string {
	th := m.theme.Cell
	frame := th.Blurred
	switch {
	case id == m.editing:
		frame = th.Editing
	case id == st.View.FocusedCell:
		frame = th.Focused
	case st.IsSticky(id):
		frame = th.Sticky
	}

	prompt := printers.Prompt(c)
	if st.Running(id) {
		prompt = th.Running.Render("In [*]")
	} else {
		prompt = th.Prompt.Render(prompt)
	}

	inner := max(width-lipgloss.Width(prompt)-4, 10)
	var source string
	switch {
	case id == m.editing:
		source = m.editor.View()
	case c.Type == cell.Markdown && c.Source != "":
		source = m.md.render(c.Source, inner)
	default:
		source = c.Source
	}
	box := frame.Width(inner).Render(source)
	parts := []string{lipgloss.JoinHorizontal(lipgloss.Top, prompt, box)}

	for _, out := range outputText(c.Outputs) {
		style := th.Output
		if out.Error {
			style = th.Error
		}
		parts = append(parts, style.Render(out.Text))
	}
	return strings.Join(parts, "\n")
}

// View renders the program.
func (m *Model) View() string {
	sections := []string{m.renderHeader(), m.body.View(), m.renderFooter()}
	return strings.Join(sections, "\n")
}

func (m *Model) renderHeader() string {
	th := m.theme.Header
	appState := m.svc.Container.App()
	name := appState.Filename
	if name == "" {
		name = "untitled"
	}
	kernelLabel := string(appState.ExecutionState)
	if appState.KernelSpecName != "" {
		kernelLabel = appState.KernelSpecName + " · " + kernelLabel
	}
	parts := []string{th.Title.Render(name), th.Kernel.Render("[" + kernelLabel + "]")}
	if appState.IsSaving {
		parts = append(parts, th.Saving.Render("saving…"))
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderFooter() string {
	th := m.theme.Footer
	var status string
	switch {
	case m.svc.Container.App().Error != "":
		status = th.Error.Render(m.svc.Container.App().Error)
	case strings.HasPrefix(m.status, "ERR:"):
		status = th.Error.Render(m.status)
	case m.status != "":
		status = th.Status.Render(m.status)
	default:
		status = th.Help.Render("j/k move · shift+enter run · a/b add · dd delete · i edit · :w save · :q quit")
	}
	line := th.Mode.Render(m.mode.String())
	if m.mode == modeCommand {
		line = m.input.View()
	}
	return status + "\n" + line
}

// Run launches the interactive TUI program over svc.
func Run(svc *app.Service) error {
	m := New(svc)
	p := tea.NewProgram(m, tea.WithAltScreen())
	svc.Container.OnChange(func() { go p.Send(stateChangedMsg{}) })
	defer svc.Container.OnChange(nil)
	_, err := p.Run()
	m.stopWatch()
	m.cancel()
	return err
}
