package layout

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func stackIDs(ps *Panels) []string {
	var ids []string
	for _, p := range ps.Stack() {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestPanels_AddExistingIDOnlyActivates(t *testing.T) {
	t.Parallel()

	ps := NewPanels(PixelMetrics())
	ps.Add(PanelSpec{ID: "a", Kind: KindNotes})
	ps.Add(PanelSpec{ID: "b", Kind: KindChat})
	if ps.Active() != "b" {
		t.Fatalf("active after add: got %q want b", ps.Active())
	}

	ps.Add(PanelSpec{ID: "a", Kind: KindNotes})
	if ps.Len() != 2 {
		t.Fatalf("duplicate add changed size: got %d want 2", ps.Len())
	}
	if ps.Active() != "a" {
		t.Fatalf("duplicate add must activate: got %q want a", ps.Active())
	}
}

func TestPanels_CascadingDefaultPosition(t *testing.T) {
	t.Parallel()

	ps := NewPanels(PixelMetrics())
	a := ps.Add(PanelSpec{ID: "a", Kind: KindNotes})
	b := ps.Add(PanelSpec{ID: "b", Kind: KindNotes})
	explicit := Point{X: 7, Y: 9}
	c := ps.Add(PanelSpec{ID: "c", Kind: KindNotes, Position: &explicit})
	d := ps.Add(PanelSpec{ID: "d", Kind: KindNotes})

	got := []Point{a.Position(), b.Position(), c.Position(), d.Position()}
	want := []Point{{X: 100, Y: 100}, {X: 130, Y: 130}, {X: 7, Y: 9}, {X: 190, Y: 190}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("positions mismatch (-want +got):\n%s", diff)
	}
	if a.Title != "Notes" {
		t.Fatalf("default title: got %q", a.Title)
	}
}

func TestPanels_RemoveActivePicksSecondToLast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remove     string
		activate   string
		wantActive string
		wantLen    int
	}{
		{name: "remove last active", remove: "c", activate: "c", wantActive: "b", wantLen: 2},
		{name: "remove first active", remove: "a", activate: "a", wantActive: "b", wantLen: 2},
		{name: "remove second-to-last active", remove: "b", activate: "b", wantActive: "c", wantLen: 2},
		{name: "remove inactive keeps active", remove: "a", activate: "c", wantActive: "c", wantLen: 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ps := NewPanels(PixelMetrics())
			for _, id := range []string{"a", "b", "c"} {
				ps.Add(PanelSpec{ID: id, Kind: KindNotes})
			}
			ps.BringToFront(tt.activate)
			if !ps.Remove(tt.remove) {
				t.Fatalf("Remove(%q): expected true", tt.remove)
			}
			if ps.Len() != tt.wantLen {
				t.Fatalf("len: got %d want %d", ps.Len(), tt.wantLen)
			}
			if ps.Active() != tt.wantActive {
				t.Fatalf("active: got %q want %q", ps.Active(), tt.wantActive)
			}
		})
	}
}

func TestPanels_RemoveLastLeavesNoActive(t *testing.T) {
	t.Parallel()

	ps := NewPanels(PixelMetrics())
	ps.Add(PanelSpec{ID: "a", Kind: KindNotes})
	ps.Remove("a")
	if ps.Len() != 0 || ps.Active() != "" {
		t.Fatalf("expected empty collection without active, got len=%d active=%q", ps.Len(), ps.Active())
	}
	if ps.Remove("a") {
		t.Fatalf("Remove of a missing id must report false")
	}
}

func TestPanels_StackOrder(t *testing.T) {
	t.Parallel()

	ps := NewPanels(PixelMetrics())
	for _, id := range []string{"a", "b", "c", "d"} {
		ps.Add(PanelSpec{ID: id, Kind: KindNotes})
	}
	ps.BringToFront("b")

	// Inactive panels stack in reverse insertion order; the active one is on top.
	if diff := cmp.Diff([]string{"d", "c", "a", "b"}, stackIDs(ps)); diff != "" {
		t.Fatalf("stack mismatch (-want +got):\n%s", diff)
	}
	if got := ps.ZIndex("b"); got != 3 {
		t.Fatalf("ZIndex(active): got %d want 3", got)
	}
	if got := ps.ZIndex("a"); got != 2 {
		t.Fatalf("ZIndex(a): got %d want 2", got)
	}
	if got := ps.ZIndex("zzz"); got != -1 {
		t.Fatalf("ZIndex(missing): got %d want -1", got)
	}
}

func TestPanels_PressBringsToFrontAndDrags(t *testing.T) {
	t.Parallel()

	ps := NewPanels(CellMetrics())
	ps.SetViewport(Size{Width: 200, Height: 60})
	posA := Point{X: 0, Y: 0}
	posB := Point{X: 50, Y: 20}
	ps.Add(PanelSpec{ID: "a", Kind: KindNotes, Position: &posA})
	ps.Add(PanelSpec{ID: "b", Kind: KindNotes, Position: &posB})

	p, region := ps.Press(Point{X: 5, Y: 0})
	if p == nil || p.ID != "a" || region != RegionTitle {
		t.Fatalf("Press on title of a: got %v %v", p, region)
	}
	if ps.Active() != "a" {
		t.Fatalf("press must bring a to front, active=%q", ps.Active())
	}
	if !ps.Drag(Point{X: 15, Y: 4}) {
		t.Fatalf("Drag: expected grabbed panel")
	}
	ps.Release()
	a, _ := ps.Get("a")
	if got, want := a.Position(), (Point{X: 10, Y: 4}); got != want {
		t.Fatalf("dragged position: got %+v want %+v", got, want)
	}
	if ps.Drag(Point{X: 30, Y: 30}) {
		t.Fatalf("Drag after Release must be a no-op")
	}
}

func TestPanels_PressOnMaximizedStillBringsToFront(t *testing.T) {
	t.Parallel()

	ps := NewPanels(CellMetrics())
	ps.SetViewport(Size{Width: 120, Height: 40})
	a := ps.NewNotes()
	a.ToggleMaximize(ps.Viewport())
	ps.NewChat()

	_, region := ps.Press(Point{X: 10, Y: 1})
	if region != RegionTitle {
		t.Fatalf("region: got %v want title", region)
	}
	if ps.Active() != a.ID {
		t.Fatalf("active: got %q want %q", ps.Active(), a.ID)
	}
	if ps.Grabbed() {
		t.Fatalf("maximized panel must not start a drag")
	}
}

func TestPanels_ConvenienceCreatorsUseUniqueIDs(t *testing.T) {
	t.Parallel()

	ps := NewPanels(PixelMetrics())
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		for _, p := range []*Panel{ps.NewNotes(), ps.NewFlowcharts(), ps.NewChat()} {
			if seen[p.ID] {
				t.Fatalf("duplicate id %q", p.ID)
			}
			seen[p.ID] = true
		}
	}
	if ps.Len() != 150 {
		t.Fatalf("len: got %d want 150", ps.Len())
	}
	p := ps.NewFlowcharts()
	if !strings.HasPrefix(p.ID, "flowcharts-") || p.Kind != KindFlowchart || p.Title != "Flowcharts" {
		t.Fatalf("unexpected flowcharts panel: id=%q kind=%q title=%q", p.ID, p.Kind, p.Title)
	}
}

func TestPanels_CloseButtonRemoves(t *testing.T) {
	t.Parallel()

	ps := NewPanels(CellMetrics())
	pos := Point{X: 0, Y: 0}
	size := Size{Width: 30, Height: 8}
	ps.Add(PanelSpec{ID: "a", Kind: KindNotes, Position: &pos, Size: &size})

	// Close sits one cell in from the right border.
	ps.Press(Point{X: 28, Y: 0})
	if ps.Len() != 0 {
		t.Fatalf("close button must remove the panel, len=%d", ps.Len())
	}
}
