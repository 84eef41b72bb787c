package layout

// Kind is the tool type hosted by a panel or a workspace tool.
type Kind string

const (
	KindNotes     Kind = "notes"
	KindFlowchart Kind = "flowchart"
	KindChat      Kind = "ai-chat"
)

// ParseKind accepts both the workspace ("flowchart") and panel ("flowcharts") spellings.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "notes", "note":
		return KindNotes, true
	case "flowchart", "flowcharts":
		return KindFlowchart, true
	case "ai-chat", "chat", "ai":
		return KindChat, true
	}
	return "", false
}

// PanelType is the panel-facing name of a kind.
func (k Kind) PanelType() string {
	if k == KindFlowchart {
		return "flowcharts"
	}
	return string(k)
}

func (k Kind) Title() string {
	switch k {
	case KindNotes:
		return "Notes"
	case KindFlowchart:
		return "Flowcharts"
	case KindChat:
		return "AI Chat"
	}
	return string(k)
}

type gesture int

const (
	gestureNone gesture = iota
	gestureDrag
	gestureResize
)

// Panel is a draggable, resizable, minimizable and maximizable window.
//
// Position and size only change through the gesture methods below; the
// owning Panels collection decides membership and which panel is active.
type Panel struct {
	ID    string
	Title string
	Kind  Kind

	metrics Metrics

	pos  Point
	size Size

	minimized bool
	maximized bool

	prevPos  Point
	prevSize Size

	gesture    gesture
	dir        Direction
	dragOffset Point

	// viewport is the last known container size, used to keep the panel reachable.
	viewport Size
}

// NewPanel builds a panel at pos with size. Zero values fall back to the metric defaults.
func NewPanel(id, title string, kind Kind, pos *Point, size *Size, m Metrics) *Panel {
	p := &Panel{
		ID:      id,
		Title:   title,
		Kind:    kind,
		metrics: m,
		pos:     m.DefaultPosition,
		size:    m.DefaultSize,
	}
	if pos != nil {
		p.pos = *pos
	}
	if size != nil && !size.IsZero() {
		p.size = *size
	}
	p.size = ClampSize(p.size, m.MinSize)
	p.prevPos, p.prevSize = p.pos, p.size
	return p
}

func (p *Panel) Position() Point  { return p.pos }
func (p *Panel) Size() Size       { return p.size }
func (p *Panel) Minimized() bool  { return p.minimized }
func (p *Panel) Maximized() bool  { return p.maximized }
func (p *Panel) Dragging() bool   { return p.gesture == gestureDrag }
func (p *Panel) Resizing() bool   { return p.gesture == gestureResize }
func (p *Panel) Metrics() Metrics { return p.metrics }

// Bounds is the rendered rect. A minimized panel shows its compact footprint
// while the stored geometry stays untouched for restoration.
func (p *Panel) Bounds() Rect {
	if p.minimized {
		return Rect{Point: p.pos, Size: p.metrics.MinimizedSize}
	}
	return Rect{Point: p.pos, Size: p.size}
}

// SetViewport records the container size; the current position is re-clamped.
func (p *Panel) SetViewport(v Size) {
	p.viewport = v
	if !p.maximized {
		p.pos = ClampToViewport(p.pos, p.Bounds().Size, v)
	}
}

// BeginDrag starts moving the panel. It is ignored while maximized.
func (p *Panel) BeginDrag(pointer Point) bool {
	if p.maximized {
		return false
	}
	p.gesture = gestureDrag
	p.dragOffset = pointer.Sub(p.pos)
	return true
}

// BeginResize starts resizing from one of the eight edge or corner handles.
// It is ignored while maximized.
func (p *Panel) BeginResize(dir Direction, pointer Point) bool {
	if p.maximized || dir == 0 {
		return false
	}
	p.gesture = gestureResize
	p.dir = dir
	return true
}

// Move applies pointer motion to the active gesture.
func (p *Panel) Move(pointer Point) {
	if p.maximized {
		return
	}
	switch p.gesture {
	case gestureDrag:
		p.pos = ClampToViewport(pointer.Sub(p.dragOffset), p.Bounds().Size, p.viewport)
	case gestureResize:
		p.resizeTo(pointer)
	}
}

// resizeTo moves the dragged edges to pointer. Sizes never drop below the
// minimum, and with a known viewport the moving edges stop at its border.
func (p *Panel) resizeTo(pointer Point) {
	least := p.metrics.MinSize
	bounded := !p.viewport.IsZero()
	x, y := p.pos.X, p.pos.Y
	w, h := p.size.Width, p.size.Height

	if p.dir.Has(East) {
		w = pointer.X - x
		if bounded {
			w = min(w, p.viewport.Width-x)
		}
		w = max(least.Width, w)
	}
	if p.dir.Has(South) {
		h = pointer.Y - y
		if bounded {
			h = min(h, p.viewport.Height-y)
		}
		h = max(least.Height, h)
	}
	if p.dir.Has(West) {
		// Right edge stays put.
		right := x + p.size.Width
		px := pointer.X
		if bounded {
			px = max(px, 0)
		}
		w = max(least.Width, right-px)
		x = right - w
	}
	if p.dir.Has(North) {
		bottom := y + p.size.Height
		py := pointer.Y
		if bounded {
			py = max(py, 0)
		}
		h = max(least.Height, bottom-py)
		y = bottom - h
	}
	p.pos = Point{X: x, Y: y}
	p.size = Size{Width: w, Height: h}
}

// End finishes any drag or resize.
func (p *Panel) End() {
	p.gesture = gestureNone
	p.dir = 0
	p.dragOffset = Point{}
}

// ToggleMaximize fills the viewport minus the inset, or restores the snapshot.
func (p *Panel) ToggleMaximize(viewport Size) {
	if p.maximized {
		p.pos, p.size = p.prevPos, p.prevSize
		p.maximized = false
		return
	}
	p.End()
	p.prevPos, p.prevSize = p.pos, p.size
	in := p.metrics.MaximizeInset
	p.pos = Point{X: in, Y: in}
	p.size = Size{Width: viewport.Width - 2*in, Height: viewport.Height - 2*in}
	p.maximized = true
}

// ToggleMinimize collapses the rendered footprint without touching stored geometry.
func (p *Panel) ToggleMinimize() {
	p.minimized = !p.minimized
}

// HitTest classifies pt against the rendered panel. Title bar buttons sit
// just inside the right handle: minimize, maximize, close.
func (p *Panel) HitTest(pt Point) (Region, Direction) {
	b := p.Bounds()
	if !b.Contains(pt) {
		return RegionOutside, 0
	}
	m := p.metrics
	hs := max(m.HandleSize, 1)
	if !p.minimized && !p.maximized {
		var d Direction
		top := pt.Y < b.Y+hs
		left := pt.X < b.X+hs
		right := pt.X >= b.Right()-hs
		if pt.Y >= b.Bottom()-hs && pt.Y >= b.Y+m.TitleHeight {
			d |= South
		}
		if left {
			d |= West
		}
		if right {
			d |= East
		}
		// The top edge shares the title bar; when the handle is as tall as
		// the title only the corners resize from there.
		if top && (left || right || hs < m.TitleHeight) {
			d |= North
		}
		if d != 0 {
			return RegionResize, d
		}
	}
	if pt.Y < b.Y+m.TitleHeight {
		bw := max(m.ButtonWidth, 1)
		fromRight := b.Right() - hs - 1 - pt.X
		if fromRight >= 0 && fromRight < 3*bw {
			switch fromRight / bw {
			case 0:
				return RegionCloseButton, 0
			case 1:
				return RegionMaximizeButton, 0
			default:
				return RegionMinimizeButton, 0
			}
		}
		return RegionTitle, 0
	}
	return RegionBody, 0
}
