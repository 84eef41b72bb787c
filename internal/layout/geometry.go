// Package layout holds the UI-state machines behind the workspace shells:
// floating panels, the panel collection and the tabbed workspaces.
//
// Nothing here renders. Coordinates are plain integers so the same code
// serves pixel metrics (the defaults) and terminal cells (CellMetrics).
package layout

// Point is a top-left anchored coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) IsZero() bool { return s.Width <= 0 || s.Height <= 0 }

// Rect is a positioned size. Right and Bottom are exclusive.
type Rect struct {
	Point
	Size
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Metrics are the tunable constants of panel geometry.
type Metrics struct {
	MinSize         Size
	DefaultSize     Size
	DefaultPosition Point
	// MaximizeInset is the gap kept around a maximized panel.
	MaximizeInset int
	// MinimizedSize is the rendered footprint of a minimized panel.
	MinimizedSize Size
	CascadeOrigin Point
	CascadeStep   int
	// HandleSize is the thickness of the resize hit regions.
	HandleSize int
	// TitleHeight is the height of the draggable title bar.
	TitleHeight int
	// ButtonWidth is the width of each title bar button (minimize, maximize, close).
	ButtonWidth int
}

// PixelMetrics mirrors the browser defaults.
func PixelMetrics() Metrics {
	return Metrics{
		MinSize:         Size{Width: 300, Height: 200},
		DefaultSize:     Size{Width: 600, Height: 400},
		DefaultPosition: Point{X: 100, Y: 100},
		MaximizeInset:   20,
		MinimizedSize:   Size{Width: 250, Height: 40},
		CascadeOrigin:   Point{X: 100, Y: 100},
		CascadeStep:     30,
		HandleSize:      16,
		TitleHeight:     40,
		ButtonWidth:     28,
	}
}

// CellMetrics are tuned for a terminal grid where one unit is one cell.
func CellMetrics() Metrics {
	return Metrics{
		MinSize:         Size{Width: 24, Height: 6},
		DefaultSize:     Size{Width: 64, Height: 18},
		DefaultPosition: Point{X: 2, Y: 1},
		MaximizeInset:   1,
		MinimizedSize:   Size{Width: 28, Height: 1},
		CascadeOrigin:   Point{X: 2, Y: 1},
		CascadeStep:     2,
		HandleSize:      1,
		TitleHeight:     1,
		ButtonWidth:     3,
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampSize raises s to at least min in both dimensions.
func ClampSize(s, min Size) Size {
	return Size{Width: max(s.Width, min.Width), Height: max(s.Height, min.Height)}
}

// ClampToViewport keeps a rect of size s positioned at p inside viewport.
// A rect larger than the viewport is pinned to the origin on that axis.
// A zero viewport leaves p unchanged.
func ClampToViewport(p Point, s Size, viewport Size) Point {
	if viewport.IsZero() {
		return p
	}
	return Point{
		X: clamp(p.X, 0, viewport.Width-s.Width),
		Y: clamp(p.Y, 0, viewport.Height-s.Height),
	}
}

// Direction is a resize direction. Corners are compositions of two edges.
type Direction uint8

const (
	North Direction = 1 << iota
	South
	East
	West

	NorthEast = North | East
	NorthWest = North | West
	SouthEast = South | East
	SouthWest = South | West
)

func (d Direction) Has(e Direction) bool { return d&e != 0 }

func (d Direction) String() string {
	s := ""
	if d.Has(North) {
		s += "n"
	}
	if d.Has(South) {
		s += "s"
	}
	if d.Has(East) {
		s += "e"
	}
	if d.Has(West) {
		s += "w"
	}
	return s
}

// ParseDirection accepts the compact css-like names ("n", "se", ...).
func ParseDirection(s string) (Direction, bool) {
	var d Direction
	for _, r := range s {
		switch r {
		case 'n':
			d |= North
		case 's':
			d |= South
		case 'e':
			d |= East
		case 'w':
			d |= West
		default:
			return 0, false
		}
	}
	if d == 0 || (d.Has(North) && d.Has(South)) || (d.Has(East) && d.Has(West)) {
		return 0, false
	}
	return d, true
}

// Region classifies a point relative to a panel.
type Region int

const (
	RegionOutside Region = iota
	RegionBody
	RegionTitle
	RegionMinimizeButton
	RegionMaximizeButton
	RegionCloseButton
	RegionResize
)
