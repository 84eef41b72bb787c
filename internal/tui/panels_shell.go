package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"probel/internal/layout"
)

// panelsShell hosts every page in a floating, overlapping panel.
type panelsShell struct {
	ps *layout.Panels
}

func newPanelsShell() *panelsShell {
	return &panelsShell{ps: layout.NewPanels(layout.CellMetrics())}
}

func (s *panelsShell) name() string { return ShellPanels }

func (s *panelsShell) resize(w, h int) {
	s.ps.SetViewport(layout.Size{Width: w, Height: h})
}

func (s *panelsShell) focused() string { return s.ps.Active() }

func (s *panelsShell) help() []key.Binding {
	return []key.Binding{
		keys.NewNotes, keys.NewFlowcharts, keys.NewChat, keys.Close, keys.Cycle,
		keys.Maximize, keys.Minimize, keys.MoveUp, keys.GrowWidth,
	}
}

func (s *panelsShell) open(a *appModel, p *layout.Panel) tea.Cmd {
	return a.mount(p.Kind, p.ID)
}

func (s *panelsShell) active() *layout.Panel {
	p, _ := s.ps.Get(s.ps.Active())
	return p
}

func (s *panelsShell) handleKey(a *appModel, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.NewNotes):
		return true, s.open(a, s.ps.NewNotes())
	case key.Matches(msg, keys.NewFlowcharts):
		return true, s.open(a, s.ps.NewFlowcharts())
	case key.Matches(msg, keys.NewChat):
		return true, s.open(a, s.ps.NewChat())
	case key.Matches(msg, keys.Close):
		if id := s.ps.Active(); id != "" {
			s.ps.Remove(id)
			a.unmount(id)
		}
		return true, nil
	case key.Matches(msg, keys.Cycle):
		s.ps.CycleActive()
		return true, nil
	}

	p := s.active()
	if p == nil {
		return false, nil
	}
	switch {
	case key.Matches(msg, keys.Maximize):
		p.ToggleMaximize(s.ps.Viewport())
	case key.Matches(msg, keys.Minimize):
		p.ToggleMinimize()
	case key.Matches(msg, keys.MoveUp):
		nudgePanel(p, 0, -1)
	case key.Matches(msg, keys.MoveDown):
		nudgePanel(p, 0, 1)
	case key.Matches(msg, keys.MoveLeft):
		nudgePanel(p, -2, 0)
	case key.Matches(msg, keys.MoveRight):
		nudgePanel(p, 2, 0)
	case key.Matches(msg, keys.GrowWidth):
		resizePanel(p, layout.East, 2)
	case key.Matches(msg, keys.ShrinkWide):
		resizePanel(p, layout.East, -2)
	case key.Matches(msg, keys.GrowHeight):
		resizePanel(p, layout.South, 1)
	case key.Matches(msg, keys.ShrinkTall):
		resizePanel(p, layout.South, -1)
	default:
		return false, nil
	}
	return true, nil
}

// nudgePanel moves a panel by running a drag gesture.
func nudgePanel(p *layout.Panel, dx, dy int) {
	at := p.Position()
	if !p.BeginDrag(at) {
		return
	}
	p.Move(at.Add(layout.Point{X: dx, Y: dy}))
	p.End()
}

// resizePanel grows or shrinks a panel from its east or south edge.
func resizePanel(p *layout.Panel, dir layout.Direction, delta int) {
	b := p.Bounds()
	edge := layout.Point{X: b.Right(), Y: b.Bottom()}
	if !p.BeginResize(dir, edge) {
		return
	}
	switch dir {
	case layout.East:
		p.Move(layout.Point{X: b.Right() + delta, Y: edge.Y})
	case layout.South:
		p.Move(layout.Point{X: edge.X, Y: b.Bottom() + delta})
	}
	p.End()
}

func (s *panelsShell) handleMouse(a *appModel, msg tea.MouseMsg) tea.Cmd {
	pt := layout.Point{X: msg.X, Y: msg.Y}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		p, region := s.ps.Press(pt)
		if p != nil && region == layout.RegionCloseButton {
			a.unmount(p.ID)
		}
	case tea.MouseActionMotion:
		s.ps.Drag(pt)
	case tea.MouseActionRelease:
		s.ps.Release()
	}
	return nil
}

func (s *panelsShell) view(a *appModel, w, h int) string {
	canvas := blankCanvas(w, h)
	if s.ps.Len() == 0 {
		hint := []string{
			styleHeading().Render("No panels open"),
			styleMuted().Render("ctrl+n notes · ctrl+f flowcharts · ctrl+g AI chat"),
		}
		for i, line := range hint {
			x := max((w-lipgloss.Width(line))/2, 0)
			overlay(canvas, []string{line}, x, h/2-1+i, w)
		}
		return strings.Join(canvas, "\n")
	}
	active := s.ps.Active()
	for _, p := range s.ps.Stack() {
		b := p.Bounds()
		overlay(canvas, renderPanel(p, a.pages[p.ID], p.ID == active), b.X, b.Y, w)
	}
	return strings.Join(canvas, "\n")
}

// renderPanel draws the frame and, unless minimized, the page inside it.
// The title bar buttons line up with layout.Panel.HitTest.
func renderPanel(p *layout.Panel, pg page, active bool) []string {
	b := p.Bounds()
	w, h := b.Width, b.Height
	border := lipgloss.NewStyle().Foreground(colorBorder)
	title := lipgloss.NewStyle().Foreground(colorSurfaceFg)
	if active {
		border = border.Foreground(colorBorderHot)
		title = title.Bold(true).Foreground(colorAccent)
	}

	g := glyphs()
	minBtn, maxBtn := g.button(g.minimize), g.button(g.maximize)
	if p.Minimized() {
		minBtn = g.button(g.restore)
	}
	if p.Maximized() {
		maxBtn = g.button(g.unmax)
	}
	titleW := max(w-11, 0)
	label := truncate(" "+p.Title+" ", titleW)
	fill := strings.Repeat(g.horizontal, max(titleW-lipgloss.Width(label), 0))
	top := border.Render(g.topLeft) + title.Render(label) + border.Render(fill+minBtn+maxBtn+g.button(g.close)+g.topRight)
	if h <= 1 {
		return []string{top}
	}

	innerW, innerH := max(w-2, 0), max(h-2, 0)
	body := ""
	if pg != nil {
		body = pg.View(innerW, innerH, active)
	}
	out := []string{top}
	side := border.Render(g.vertical)
	for _, line := range fitBlock(body, innerW, innerH) {
		out = append(out, side+line+side)
	}
	out = append(out, border.Render(g.bottomLeft+strings.Repeat(g.horizontal, innerW)+g.bottomRight))
	return out
}
