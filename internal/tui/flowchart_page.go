package tui

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"probel/internal/layout"
	"probel/internal/model"
)

type flowchartsLoadedMsg struct {
	charts []model.Flowchart
	err    error
}

type flowchartSavedMsg struct {
	chart model.Flowchart
	err   error
}

type flowchartDeletedMsg struct {
	id  string
	err error
}

type promptKind int

const (
	promptNone promptKind = iota
	promptLabel
	promptTitle
)

// canvasExtent is the model-space area mapped onto the mini map.
var canvasExtent = model.NodePosition{X: 600, Y: 520}

// nodeMoveStep is how far shift+arrow moves a node in model units.
const nodeMoveStep = 10

type flowchartPage struct {
	id  string
	svc FlowchartsService
	log *zap.Logger

	charts []model.Flowchart
	list   list.Model

	open  *model.Flowchart
	dirty bool

	sel        int
	edgeSel    int
	focusEdges bool
	connecting bool
	target     int

	prompt     textinput.Model
	promptKind promptKind

	loading       bool
	saving        bool
	confirmDelete string

	status    string
	statusErr bool

	randPos func() float64
}

func newFlowchartPage(id string, svc FlowchartsService, log *zap.Logger) *flowchartPage {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 120
	return &flowchartPage{
		id:      id,
		svc:     svc,
		log:     log.With(zap.String("page", id)),
		list:    newList(),
		prompt:  in,
		randPos: func() float64 { return float64(rand.IntN(501)) },
	}
}

func (p *flowchartPage) ID() string        { return p.id }
func (p *flowchartPage) Kind() layout.Kind { return layout.KindFlowchart }
func (p *flowchartPage) Capturing() bool   { return p.promptKind != promptNone }
func (p *flowchartPage) Init() tea.Cmd     { return p.load() }

func (p *flowchartPage) setStatus(s string, isErr bool) { p.status, p.statusErr = s, isErr }

func (p *flowchartPage) load() tea.Cmd {
	p.loading = true
	svc := p.svc
	return wrap(p.id, func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		cs, err := svc.List(ctx)
		return flowchartsLoadedMsg{charts: cs, err: err}
	})
}

func (p *flowchartPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case flowchartsLoadedMsg:
		p.loading = false
		if msg.err != nil {
			p.setStatus(errLine(p.log, "load flowcharts failed", msg.err), true)
			return nil
		}
		p.charts = msg.charts
		p.refreshList()
		p.setStatus("", false)
		return nil

	case flowchartSavedMsg:
		p.saving = false
		if msg.err != nil {
			p.setStatus(errLine(p.log, "save flowchart failed", msg.err), true)
			return nil
		}
		p.upsert(msg.chart)
		if p.open != nil {
			c := cloneChart(msg.chart)
			p.open = &c
			p.dirty = false
			p.clampSelection()
		}
		p.setStatus("Saved", false)
		return nil

	case flowchartDeletedMsg:
		if msg.err != nil {
			p.setStatus(errLine(p.log, "delete flowchart failed", msg.err), true)
			return nil
		}
		p.removeChart(msg.id)
		p.setStatus("Deleted", false)
		return nil

	case tea.KeyMsg:
		switch {
		case p.promptKind != promptNone:
			return p.updatePrompt(msg)
		case p.open != nil:
			return p.updateEditor(msg)
		}
		return p.updateList(msg)
	}
	if p.promptKind != promptNone {
		var cmd tea.Cmd
		p.prompt, cmd = p.prompt.Update(msg)
		return wrap(p.id, cmd)
	}
	return nil
}

func (p *flowchartPage) updateList(msg tea.KeyMsg) tea.Cmd {
	if p.confirmDelete != "" {
		id := p.confirmDelete
		p.confirmDelete = ""
		if msg.String() == "y" {
			return p.deleteChart(id)
		}
		p.setStatus("", false)
		return nil
	}
	switch msg.String() {
	case "enter":
		if c, ok := p.selectedChart(); ok {
			p.openChart(c)
		}
		return nil
	case "n":
		p.openChart(model.Flowchart{Nodes: []model.Node{model.StartNode()}, Edges: []model.Edge{}})
		p.dirty = true
		return p.beginPrompt(promptTitle, "")
	case "d":
		if c, ok := p.selectedChart(); ok {
			p.confirmDelete = c.ID
			p.setStatus(fmt.Sprintf("Delete %q? y/n", c.Title), false)
		}
		return nil
	case "r":
		return p.load()
	}
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return wrap(p.id, cmd)
}

func (p *flowchartPage) updateEditor(msg tea.KeyMsg) tea.Cmd {
	c := p.open
	if p.connecting {
		switch msg.String() {
		case "esc":
			p.connecting = false
		case "up", "k":
			p.target = (p.target + len(c.Nodes) - 1) % len(c.Nodes)
		case "down", "j":
			p.target = (p.target + 1) % len(c.Nodes)
		case "enter":
			p.connecting = false
			p.connect(p.sel, p.target)
		}
		return nil
	}

	switch msg.String() {
	case "esc":
		p.open = nil
		if p.dirty {
			p.setStatus("Unsaved changes discarded", false)
		}
		p.dirty = false
		return nil
	case "ctrl+s":
		return p.save()
	case "tab":
		p.focusEdges = !p.focusEdges && len(c.Edges) > 0
	case "up", "k":
		p.moveSelection(-1)
	case "down", "j":
		p.moveSelection(1)
	case "a":
		p.addNode()
	case "e", "enter":
		if n := p.selectedNode(); n != nil {
			return p.beginPrompt(promptLabel, n.Data.Label)
		}
	case "t":
		return p.beginPrompt(promptTitle, c.Title)
	case "c":
		if len(c.Nodes) > 1 && p.selectedNode() != nil {
			p.connecting = true
			p.target = (p.sel + 1) % len(c.Nodes)
		}
	case "x", "delete":
		if p.focusEdges {
			p.deleteEdge(p.edgeSel)
		} else {
			p.deleteNode(p.sel)
		}
	case "shift+left":
		p.nudge(-nodeMoveStep, 0)
	case "shift+right":
		p.nudge(nodeMoveStep, 0)
	case "shift+up":
		p.nudge(0, -nodeMoveStep)
	case "shift+down":
		p.nudge(0, nodeMoveStep)
	}
	return nil
}

func (p *flowchartPage) beginPrompt(k promptKind, value string) tea.Cmd {
	p.promptKind = k
	p.prompt.SetValue(value)
	p.prompt.CursorEnd()
	return wrap(p.id, p.prompt.Focus())
}

func (p *flowchartPage) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.promptKind = promptNone
		p.prompt.Blur()
		return nil
	case "enter":
		v := strings.TrimSpace(p.prompt.Value())
		switch p.promptKind {
		case promptLabel:
			if n := p.selectedNode(); n != nil && v != "" {
				n.Data.Label = v
				p.dirty = true
			}
		case promptTitle:
			if p.open != nil {
				p.open.Title = v
				p.dirty = true
			}
		}
		p.promptKind = promptNone
		p.prompt.Blur()
		return nil
	}
	var cmd tea.Cmd
	p.prompt, cmd = p.prompt.Update(msg)
	return wrap(p.id, cmd)
}

func cloneChart(c model.Flowchart) model.Flowchart {
	c.Nodes = append([]model.Node{}, c.Nodes...)
	c.Edges = append([]model.Edge{}, c.Edges...)
	return c
}

func (p *flowchartPage) openChart(c model.Flowchart) {
	cc := cloneChart(c)
	p.open = &cc
	p.dirty = false
	p.sel, p.edgeSel, p.focusEdges, p.connecting = 0, 0, false, false
	p.setStatus("", false)
}

func (p *flowchartPage) selectedNode() *model.Node {
	if p.open == nil || p.sel < 0 || p.sel >= len(p.open.Nodes) {
		return nil
	}
	return &p.open.Nodes[p.sel]
}

func (p *flowchartPage) moveSelection(d int) {
	if p.focusEdges {
		if n := len(p.open.Edges); n > 0 {
			p.edgeSel = (p.edgeSel + d + n) % n
		}
		return
	}
	if n := len(p.open.Nodes); n > 0 {
		p.sel = (p.sel + d + n) % n
	}
}

func (p *flowchartPage) clampSelection() {
	if p.open == nil {
		return
	}
	p.sel = min(max(p.sel, 0), max(len(p.open.Nodes)-1, 0))
	p.edgeSel = min(max(p.edgeSel, 0), max(len(p.open.Edges)-1, 0))
	if len(p.open.Edges) == 0 {
		p.focusEdges = false
	}
}

// nextNodeID is one past the largest numeric node id.
func nextNodeID(nodes []model.Node) string {
	hi := 0
	for _, n := range nodes {
		if v, err := strconv.Atoi(n.ID); err == nil && v > hi {
			hi = v
		}
	}
	return strconv.Itoa(max(hi, len(nodes)) + 1)
}

func (p *flowchartPage) addNode() {
	id := nextNodeID(p.open.Nodes)
	p.open.Nodes = append(p.open.Nodes, model.Node{
		ID:       id,
		Type:     "default",
		Data:     model.NodeData{Label: "Node " + id},
		Position: model.NodePosition{X: p.randPos(), Y: p.randPos()},
	})
	p.sel = len(p.open.Nodes) - 1
	p.focusEdges = false
	p.dirty = true
}

// connect adds an edge from node i to node j unless it exists or loops.
func (p *flowchartPage) connect(i, j int) {
	c := p.open
	if i == j || i < 0 || j < 0 || i >= len(c.Nodes) || j >= len(c.Nodes) {
		return
	}
	src, dst := c.Nodes[i].ID, c.Nodes[j].ID
	for _, e := range c.Edges {
		if e.Source == src && e.Target == dst {
			p.setStatus("Already connected", false)
			return
		}
	}
	c.Edges = append(c.Edges, model.Edge{ID: "e" + src + "-" + dst, Source: src, Target: dst})
	p.dirty = true
}

func (p *flowchartPage) deleteNode(i int) {
	c := p.open
	if i < 0 || i >= len(c.Nodes) {
		return
	}
	id := c.Nodes[i].ID
	c.Nodes = append(c.Nodes[:i:i], c.Nodes[i+1:]...)
	kept := c.Edges[:0:0]
	for _, e := range c.Edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	c.Edges = kept
	p.dirty = true
	p.clampSelection()
}

func (p *flowchartPage) deleteEdge(i int) {
	c := p.open
	if i < 0 || i >= len(c.Edges) {
		return
	}
	c.Edges = append(c.Edges[:i:i], c.Edges[i+1:]...)
	p.dirty = true
	p.clampSelection()
}

func (p *flowchartPage) nudge(dx, dy float64) {
	n := p.selectedNode()
	if n == nil || p.focusEdges {
		return
	}
	n.Position.X = max(n.Position.X+dx, 0)
	n.Position.Y = max(n.Position.Y+dy, 0)
	p.dirty = true
}

func (p *flowchartPage) save() tea.Cmd {
	if p.saving || p.open == nil {
		return nil
	}
	p.saving = true
	p.setStatus("Saving...", false)
	c := cloneChart(*p.open)
	svc := p.svc
	return wrap(p.id, func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		if c.ID == "" {
			out, err := svc.Create(ctx, c)
			return flowchartSavedMsg{chart: out, err: err}
		}
		out, err := svc.Update(ctx, c.ID, model.FlowchartPatch{
			Title:       &c.Title,
			Description: &c.Description,
			Nodes:       &c.Nodes,
			Edges:       &c.Edges,
		})
		return flowchartSavedMsg{chart: out, err: err}
	})
}

func (p *flowchartPage) deleteChart(id string) tea.Cmd {
	svc := p.svc
	p.setStatus("Deleting...", false)
	return wrap(p.id, func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		return flowchartDeletedMsg{id: id, err: svc.Delete(ctx, id)}
	})
}

func (p *flowchartPage) selectedChart() (model.Flowchart, bool) {
	id := selectedID(p.list)
	for _, c := range p.charts {
		if c.ID == id {
			return c, true
		}
	}
	return model.Flowchart{}, false
}

func (p *flowchartPage) upsert(c model.Flowchart) {
	out := make([]model.Flowchart, 0, len(p.charts)+1)
	out = append(out, c)
	for _, x := range p.charts {
		if x.ID != c.ID {
			out = append(out, x)
		}
	}
	p.charts = out
	p.refreshList()
	selectByID(&p.list, c.ID)
}

func (p *flowchartPage) removeChart(id string) {
	out := p.charts[:0:0]
	for _, x := range p.charts {
		if x.ID != id {
			out = append(out, x)
		}
	}
	p.charts = out
	if p.open != nil && p.open.ID == id {
		p.open = nil
	}
	p.refreshList()
}

func (p *flowchartPage) refreshList() {
	cur := selectedID(p.list)
	items := make([]list.Item, 0, len(p.charts))
	for _, c := range p.charts {
		items = append(items, rowItem{id: c.ID, title: c.Title, meta: fmt.Sprintf("%d nodes · %s", len(c.Nodes), relTime(c.LastUpdated))})
	}
	p.list.SetItems(items)
	if cur != "" {
		selectByID(&p.list, cur)
	}
}

func (p *flowchartPage) statusLine(w int) string {
	switch {
	case p.status == "":
		return ""
	case p.statusErr:
		return styleError().Render(truncate(p.status, w))
	}
	return styleMuted().Render(truncate(p.status, w))
}

func (p *flowchartPage) View(w, h int, focused bool) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	if p.open != nil {
		return p.viewEditor(w, h)
	}
	lines := []string{
		styleHeading().Render(fmt.Sprintf("Flowcharts (%d)", len(p.charts))),
		styleMuted().Render(truncate("n new · enter open · d delete · r reload", w)),
	}
	switch {
	case p.loading:
		lines = append(lines, styleMuted().Render("Loading..."))
	case len(p.charts) == 0 && !p.statusErr:
		lines = append(lines, styleMuted().Render("No flowcharts yet. Press n to start one."))
	}
	if s := p.statusLine(w); s != "" {
		lines = append(lines, s)
	}
	p.list.SetSize(w, max(h-len(lines), 0))
	if !p.loading && len(p.charts) > 0 {
		lines = append(lines, p.list.View())
	}
	return strings.Join(lines, "\n")
}

func (p *flowchartPage) viewEditor(w, h int) string {
	c := p.open
	title := c.Title
	if strings.TrimSpace(title) == "" {
		title = model.UntitledTitle
	}
	head := styleHeading().Render(truncate(title, w/2))
	info := fmt.Sprintf("  %d nodes · %d edges", len(c.Nodes), len(c.Edges))
	if p.dirty {
		info += " · modified"
	}
	top := []string{head + styleMuted().Render(info)}

	var hint string
	switch {
	case p.promptKind == promptLabel:
		hint = "Node label:"
	case p.promptKind == promptTitle:
		hint = "Flowchart title:"
	case p.connecting:
		hint = "Pick a target with ↑/↓, enter to connect, esc to cancel"
	default:
		hint = "a add · e label · c connect · x delete · tab nodes/edges · shift+arrows move · t title · ctrl+s save · esc close"
	}
	bottom := []string{styleMuted().Render(truncate(hint, w))}
	if p.promptKind != promptNone {
		p.prompt.Width = max(w-3, 1)
		bottom = append(bottom, p.prompt.View())
	}
	if s := p.statusLine(w); s != "" {
		bottom = append(bottom, s)
	}
	bodyH := max(h-len(top)-len(bottom), 1)

	listW := w
	mapW := 0
	if w >= 56 {
		listW = w * 2 / 5
		mapW = w - listW - 1
	}
	left := p.viewGraphLists(listW, bodyH)
	body := left
	if mapW > 0 {
		right := p.viewMap(mapW, bodyH)
		rows := make([]string, bodyH)
		for i := range rows {
			rows[i] = left[i] + styleMuted().Render(glyphs().vertical) + right[i]
		}
		body = rows
	}
	out := append(top, body...)
	out = append(out, bottom...)
	return strings.Join(out, "\n")
}

func (p *flowchartPage) viewGraphLists(w, h int) []string {
	c := p.open
	var lines []string
	lines = append(lines, styleMuted().Render("Nodes"))
	for i, n := range c.Nodes {
		line := fmt.Sprintf(" %s %s", n.ID, n.Data.Label)
		if n.Type != "" && n.Type != "default" {
			line += " (" + n.Type + ")"
		}
		switch {
		case p.connecting && i == p.target:
			line = lipgloss.NewStyle().Foreground(colorAccent).Render(glyphs().arrow + line[1:])
		case !p.focusEdges && i == p.sel:
			line = styleSelected().Render(fitLine(line, w))
		}
		lines = append(lines, line)
	}
	lines = append(lines, styleMuted().Render("Edges"))
	if len(c.Edges) == 0 {
		lines = append(lines, styleMuted().Render(" none"))
	}
	for i, e := range c.Edges {
		line := fmt.Sprintf(" %s %s %s", p.labelOf(e.Source), glyphs().arrow, p.labelOf(e.Target))
		if e.Label != "" {
			line += " [" + e.Label + "]"
		}
		if p.focusEdges && i == p.edgeSel {
			line = styleSelected().Render(fitLine(line, w))
		}
		lines = append(lines, line)
	}
	return fitBlock(strings.Join(lines, "\n"), w, h)
}

func (p *flowchartPage) labelOf(id string) string {
	for _, n := range p.open.Nodes {
		if n.ID == id {
			return n.Data.Label
		}
	}
	return id
}

// viewMap places node labels on a w×h grid scaled from model space.
func (p *flowchartPage) viewMap(w, h int) []string {
	canvas := blankCanvas(w, h)
	for i, n := range p.open.Nodes {
		col := int(n.Position.X / canvasExtent.X * float64(w-1))
		row := int(n.Position.Y / canvasExtent.Y * float64(h-1))
		label := "[" + n.Data.Label + "]"
		label = truncate(label, max(w/3, 4))
		col = min(max(col, 0), max(w-xansi.StringWidth(label), 0))
		row = min(max(row, 0), h-1)
		if i == p.sel && !p.focusEdges {
			label = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(label)
		}
		overlay(canvas, []string{label}, col, row, w)
	}
	return canvas
}
