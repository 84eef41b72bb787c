package layout

import (
	"github.com/google/uuid"
)

// PanelSpec describes a panel to add. Position and Size are optional.
type PanelSpec struct {
	ID       string
	Title    string
	Kind     Kind
	Position *Point
	Size     *Size
}

// Panels owns an ordered panel collection and the active panel.
//
// Z-order is explicit: the active panel is always on top and the others
// stack in reverse insertion order below it (the first inserted panel is
// the highest of the inactive ones).
type Panels struct {
	metrics  Metrics
	panels   []*Panel
	active   string
	viewport Size

	// grabbed is the panel with an ongoing drag or resize.
	grabbed *Panel
}

func NewPanels(m Metrics) *Panels {
	return &Panels{metrics: m}
}

func (ps *Panels) Len() int       { return len(ps.panels) }
func (ps *Panels) Active() string { return ps.active }
func (ps *Panels) Metrics() Metrics {
	return ps.metrics
}

// All returns the panels in insertion order.
func (ps *Panels) All() []*Panel {
	out := make([]*Panel, len(ps.panels))
	copy(out, ps.panels)
	return out
}

func (ps *Panels) Get(id string) (*Panel, bool) {
	for _, p := range ps.panels {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (ps *Panels) indexOf(id string) int {
	for i, p := range ps.panels {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// SetViewport updates the container size for every panel.
func (ps *Panels) SetViewport(v Size) {
	ps.viewport = v
	for _, p := range ps.panels {
		p.SetViewport(v)
	}
}

func (ps *Panels) Viewport() Size { return ps.viewport }

// Add appends a panel and activates it. A panel whose id is already present
// is only activated. Without an explicit position the panel cascades from
// the origin by one step per existing panel.
func (ps *Panels) Add(spec PanelSpec) *Panel {
	if p, ok := ps.Get(spec.ID); ok {
		ps.active = p.ID
		return p
	}
	pos := spec.Position
	if pos == nil {
		off := len(ps.panels) * ps.metrics.CascadeStep
		pos = &Point{X: ps.metrics.CascadeOrigin.X + off, Y: ps.metrics.CascadeOrigin.Y + off}
	}
	title := spec.Title
	if title == "" {
		title = spec.Kind.Title()
	}
	p := NewPanel(spec.ID, title, spec.Kind, pos, spec.Size, ps.metrics)
	if !ps.viewport.IsZero() {
		p.SetViewport(ps.viewport)
	}
	ps.panels = append(ps.panels, p)
	ps.active = p.ID
	return p
}

// Remove deletes a panel. When the removed panel was active, the panel that
// was second to last before removal becomes active (or none when empty).
func (ps *Panels) Remove(id string) bool {
	i := ps.indexOf(id)
	if i < 0 {
		return false
	}
	before := ps.panels
	next := ""
	if len(before) > 1 {
		next = before[len(before)-2].ID
		// Never leave the removed panel active.
		if next == id {
			next = before[len(before)-1].ID
		}
	}
	ps.panels = append(append([]*Panel{}, before[:i]...), before[i+1:]...)
	if ps.grabbed != nil && ps.grabbed.ID == id {
		ps.grabbed = nil
	}
	if ps.active == id {
		ps.active = next
	}
	return true
}

// BringToFront marks a panel active.
func (ps *Panels) BringToFront(id string) {
	if ps.indexOf(id) >= 0 {
		ps.active = id
	}
}

// Stack returns the panels bottom to top.
func (ps *Panels) Stack() []*Panel {
	out := make([]*Panel, 0, len(ps.panels))
	var top *Panel
	for i := len(ps.panels) - 1; i >= 0; i-- {
		p := ps.panels[i]
		if p.ID == ps.active {
			top = p
			continue
		}
		out = append(out, p)
	}
	if top != nil {
		out = append(out, top)
	}
	return out
}

// ZIndex is the rank of a panel in Stack (0 is the bottom), or -1.
func (ps *Panels) ZIndex(id string) int {
	for i, p := range ps.Stack() {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// PanelAt returns the topmost panel under pt.
func (ps *Panels) PanelAt(pt Point) (*Panel, Region, Direction) {
	stack := ps.Stack()
	for i := len(stack) - 1; i >= 0; i-- {
		if r, d := stack[i].HitTest(pt); r != RegionOutside {
			return stack[i], r, d
		}
	}
	return nil, RegionOutside, 0
}

// Press handles a primary button press at pt. Any press on a panel brings it
// to front; the title bar starts a drag, handles start a resize and the
// title buttons toggle state. It returns the panel and the region hit.
func (ps *Panels) Press(pt Point) (*Panel, Region) {
	p, region, dir := ps.PanelAt(pt)
	if p == nil {
		return nil, RegionOutside
	}
	ps.BringToFront(p.ID)
	switch region {
	case RegionTitle:
		if p.BeginDrag(pt) {
			ps.grabbed = p
		}
	case RegionResize:
		if p.BeginResize(dir, pt) {
			ps.grabbed = p
		}
	case RegionMinimizeButton:
		p.ToggleMinimize()
	case RegionMaximizeButton:
		p.ToggleMaximize(ps.viewport)
	case RegionCloseButton:
		ps.Remove(p.ID)
	}
	return p, region
}

// Drag forwards pointer motion to the grabbed panel, if any.
func (ps *Panels) Drag(pt Point) bool {
	if ps.grabbed == nil {
		return false
	}
	ps.grabbed.Move(pt)
	return true
}

// Release ends the ongoing gesture.
func (ps *Panels) Release() {
	if ps.grabbed != nil {
		ps.grabbed.End()
		ps.grabbed = nil
	}
}

func (ps *Panels) Grabbed() bool { return ps.grabbed != nil }

// NewPanelID builds a collision resistant id for a kind.
func NewPanelID(kind Kind) string {
	return kind.PanelType() + "-" + uuid.NewString()
}

func (ps *Panels) NewNotes() *Panel {
	return ps.Add(PanelSpec{ID: NewPanelID(KindNotes), Kind: KindNotes})
}

func (ps *Panels) NewFlowcharts() *Panel {
	return ps.Add(PanelSpec{ID: NewPanelID(KindFlowchart), Kind: KindFlowchart})
}

func (ps *Panels) NewChat() *Panel {
	return ps.Add(PanelSpec{ID: NewPanelID(KindChat), Kind: KindChat})
}

// CycleActive activates the next panel in insertion order.
func (ps *Panels) CycleActive() {
	if len(ps.panels) == 0 {
		return
	}
	i := ps.indexOf(ps.active)
	ps.active = ps.panels[(i+1)%len(ps.panels)].ID
}
