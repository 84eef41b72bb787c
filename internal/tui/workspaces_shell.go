package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"probel/internal/layout"
)

const (
	sidebarWidth = 20
	// minToolRow is the height every grid row after the first gets.
	minToolRow = 8
)

// sidebarTools are the sidebar entries, one per row after the heading.
var sidebarTools = []layout.Kind{layout.KindNotes, layout.KindFlowchart, layout.KindChat}

// sidebarToggleRow is the sidebar row of the add-to-side toggle.
const sidebarToggleRow = 5

// workspacesShell is a tab bar of workspaces, a tool sidebar and a grid of
// tools for the active workspace.
type workspacesShell struct {
	ws        *layout.Workspaces
	addToSide bool
	// focus is the focused tool per workspace id.
	focus map[string]string

	w, h int
}

type tabSpan struct {
	index      int
	start, end int
	closeX     int
}

type toolRect struct {
	tool layout.Tool
	rect layout.Rect
}

func newWorkspacesShell() *workspacesShell {
	return &workspacesShell{ws: layout.NewWorkspaces(), focus: map[string]string{}}
}

func (s *workspacesShell) name() string { return ShellWorkspaces }

func (s *workspacesShell) resize(w, h int) { s.w, s.h = w, h }

func (s *workspacesShell) help() []key.Binding {
	return []key.Binding{
		keys.NewNotes, keys.NewFlowcharts, keys.NewChat, keys.ToggleSide, keys.Close, keys.Cycle,
		keys.NewWorkspace, keys.CloseWorkspace, keys.NextWorkspace, keys.PrevWorkspace,
	}
}

func (s *workspacesShell) focused() string {
	w := s.ws.Active()
	id := s.focus[w.ID]
	for _, t := range w.Tools {
		if t.ID == id {
			return id
		}
	}
	if len(w.Tools) > 0 {
		return w.Tools[0].ID
	}
	return ""
}

// addTool places a tool and mounts its page. Tools it replaces are unmounted.
func (s *workspacesShell) addTool(a *appModel, kind layout.Kind) tea.Cmd {
	w := s.ws.Active()
	before := make([]string, 0, len(w.Tools))
	for _, t := range w.Tools {
		before = append(before, t.ID)
	}
	t := s.ws.AddTool(kind, s.addToSide)
	kept := map[string]bool{}
	for _, x := range w.Tools {
		kept[x.ID] = true
	}
	for _, id := range before {
		if !kept[id] {
			a.unmount(id)
		}
	}
	s.focus[w.ID] = t.ID
	return a.mount(t.Kind, t.ID)
}

func (s *workspacesShell) closeWorkspace(a *appModel, i int) {
	w, ok := s.ws.At(i)
	if !ok || !s.ws.Close(i) {
		return
	}
	for _, t := range w.Tools {
		a.unmount(t.ID)
	}
	delete(s.focus, w.ID)
}

func (s *workspacesShell) closeTool(a *appModel, id string) {
	if id != "" && s.ws.RemoveTool(id) {
		a.unmount(id)
	}
}

func (s *workspacesShell) cycleFocus() {
	w := s.ws.Active()
	if len(w.Tools) == 0 {
		return
	}
	var order []string
	for _, row := range w.Rows() {
		for _, t := range row {
			order = append(order, t.ID)
		}
	}
	cur := s.focused()
	for i, id := range order {
		if id == cur {
			s.focus[w.ID] = order[(i+1)%len(order)]
			return
		}
	}
	s.focus[w.ID] = order[0]
}

func (s *workspacesShell) handleKey(a *appModel, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.NewNotes):
		return true, s.addTool(a, layout.KindNotes)
	case key.Matches(msg, keys.NewFlowcharts):
		return true, s.addTool(a, layout.KindFlowchart)
	case key.Matches(msg, keys.NewChat):
		return true, s.addTool(a, layout.KindChat)
	case key.Matches(msg, keys.ToggleSide):
		s.addToSide = !s.addToSide
	case key.Matches(msg, keys.Close):
		s.closeTool(a, s.focused())
	case key.Matches(msg, keys.Cycle):
		s.cycleFocus()
	case key.Matches(msg, keys.NewWorkspace):
		s.ws.Add()
	case key.Matches(msg, keys.CloseWorkspace):
		s.closeWorkspace(a, s.ws.ActiveIndex())
	case key.Matches(msg, keys.NextWorkspace):
		s.ws.Next()
	case key.Matches(msg, keys.PrevWorkspace):
		s.ws.Prev()
	default:
		return false, nil
	}
	return true, nil
}

// tabSpans lays out the tab bar: " Name × " per workspace, then " + ".
func (s *workspacesShell) tabSpans() ([]tabSpan, int) {
	var spans []tabSpan
	x := 0
	for i, w := range s.ws.All() {
		label := " " + w.Name + " "
		lw := xansi.StringWidth(label)
		spans = append(spans, tabSpan{index: i, start: x, end: x + lw + 2, closeX: x + lw})
		x += lw + 2
	}
	return spans, x
}

// toolRects lays out the active workspace's grid inside the main area.
func (s *workspacesShell) toolRects() []toolRect {
	mainX := sidebarWidth + 1
	mainW := max(s.w-mainX, 0)
	mainH := max(s.h-1, 0)
	rows := s.ws.Active().Rows()
	heights := layout.RowHeights(mainH, len(rows), minToolRow)
	var out []toolRect
	y := 1
	for i, row := range rows {
		rh := heights[i]
		n := len(row)
		colW := (mainW - (n - 1)) / n
		x := mainX
		for j, t := range row {
			cw := colW
			if j == n-1 {
				cw = mainX + mainW - x
			}
			out = append(out, toolRect{tool: t, rect: layout.Rect{
				Point: layout.Point{X: x, Y: y},
				Size:  layout.Size{Width: max(cw, 0), Height: rh},
			}})
			x += cw + 1
		}
		y += rh
	}
	return out
}

func (s *workspacesShell) handleMouse(a *appModel, msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	x, y := msg.X, msg.Y
	if y == 0 {
		spans, plusX := s.tabSpans()
		for _, sp := range spans {
			if x >= sp.start && x < sp.end {
				if x == sp.closeX {
					s.closeWorkspace(a, sp.index)
				} else {
					s.ws.Select(sp.index)
				}
				return nil
			}
		}
		if x >= plusX && x < plusX+3 {
			s.ws.Add()
		}
		return nil
	}
	if x < sidebarWidth {
		row := y - 1
		switch {
		case row >= 1 && row <= len(sidebarTools):
			return s.addTool(a, sidebarTools[row-1])
		case row == sidebarToggleRow:
			s.addToSide = !s.addToSide
		}
		return nil
	}
	pt := layout.Point{X: x, Y: y}
	for _, tr := range s.toolRects() {
		if !tr.rect.Contains(pt) {
			continue
		}
		if y == tr.rect.Y && x == tr.rect.Right()-2 {
			s.closeTool(a, tr.tool.ID)
			return nil
		}
		s.focus[s.ws.Active().ID] = tr.tool.ID
		return nil
	}
	return nil
}

func (s *workspacesShell) view(a *appModel, w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	canvas := blankCanvas(w, h)

	spans, _ := s.tabSpans()
	var tabs strings.Builder
	for _, sp := range spans {
		ws, _ := s.ws.At(sp.index)
		st := styleTab()
		if sp.index == s.ws.ActiveIndex() {
			st = styleTabActive()
		}
		tabs.WriteString(st.UnsetPadding().Render(" " + ws.Name + " " + glyphs().close + " "))
	}
	tabs.WriteString(styleMuted().Render(" + "))
	canvas[0] = fitLine(tabs.String(), w)

	side := s.viewSidebar(h - 1)
	for i, line := range side {
		overlay(canvas, []string{line}, 0, i+1, w)
	}
	sep := styleMuted().Render(glyphs().vertical)
	for y := 1; y < h; y++ {
		overlay(canvas, []string{sep}, sidebarWidth, y, w)
	}

	active := s.ws.Active()
	if len(active.Tools) == 0 {
		msg := []string{
			styleHeading().Render(active.Name + " is empty"),
			styleMuted().Render("Pick a tool from the sidebar or press ctrl+n, ctrl+f or ctrl+g."),
		}
		mainW := w - sidebarWidth - 1
		for i, line := range msg {
			line = truncate(line, mainW)
			x := sidebarWidth + 1 + max((mainW-lipgloss.Width(line))/2, 0)
			overlay(canvas, []string{line}, x, h/2-1+i, w)
		}
		return strings.Join(canvas, "\n")
	}

	focused := s.focused()
	for _, tr := range s.toolRects() {
		overlay(canvas, renderTool(tr, a.pages[tr.tool.ID], tr.tool.ID == focused), tr.rect.X, tr.rect.Y, w)
		if tr.rect.Right() < w {
			for y := tr.rect.Y; y < tr.rect.Bottom(); y++ {
				overlay(canvas, []string{sep}, tr.rect.Right(), y, w)
			}
		}
	}
	return strings.Join(canvas, "\n")
}

func (s *workspacesShell) viewSidebar(h int) []string {
	lines := []string{styleHeading().Render("Tools")}
	for i, k := range sidebarTools {
		lines = append(lines, " "+string(rune('1'+i))+" "+k.Title())
	}
	lines = append(lines, "")
	mark := "[ ]"
	if s.addToSide {
		mark = "[x]"
	}
	lines = append(lines, styleMuted().Render(" "+mark+" add to side"))
	return fitBlock(strings.Join(lines, "\n"), sidebarWidth, h)
}

// renderTool draws a tool's title row and page. The close mark sits one
// cell in from the right edge.
func renderTool(tr toolRect, pg page, focused bool) []string {
	w, h := tr.rect.Width, tr.rect.Height
	if w <= 0 || h <= 0 {
		return nil
	}
	st := lipgloss.NewStyle().Foreground(colorChromeFg)
	if focused {
		st = lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent)
	}
	head := st.Render(fitLine(" "+truncate(tr.tool.Kind.Title(), max(w-4, 0)), max(w-2, 0)) + glyphs().close + " ")
	out := []string{head}
	if h == 1 {
		return out
	}
	body := ""
	if pg != nil {
		body = pg.View(w, h-1, focused)
	}
	return append(out, fitBlock(body, w, h-1)...)
}
