package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWorkspaces_DefaultAndAdd(t *testing.T) {
	t.Parallel()

	ws := NewWorkspaces()
	if ws.Len() != 1 || ws.Active().ID != "default" || ws.Active().Name != "Workspace 1" {
		t.Fatalf("unexpected initial workspace: %+v", ws.Active())
	}
	w := ws.Add()
	if w.Name != "Workspace 2" {
		t.Fatalf("name: got %q want Workspace 2", w.Name)
	}
	if ws.ActiveIndex() != 1 {
		t.Fatalf("Add must activate the new workspace, active=%d", ws.ActiveIndex())
	}
}

func TestWorkspaces_CloseNeverLeavesZero(t *testing.T) {
	t.Parallel()

	ws := NewWorkspaces()
	if ws.Close(0) {
		t.Fatalf("closing the only workspace must be a no-op")
	}
	if ws.Len() != 1 {
		t.Fatalf("len: got %d want 1", ws.Len())
	}

	ws.Add()
	ws.Add()
	for ws.Len() > 1 {
		if !ws.Close(ws.Len() - 1) {
			t.Fatalf("Close: expected success with %d workspaces", ws.Len())
		}
		if ws.ActiveIndex() < 0 || ws.ActiveIndex() >= ws.Len() {
			t.Fatalf("active index %d out of range for %d workspaces", ws.ActiveIndex(), ws.Len())
		}
	}
	if ws.Close(0) || ws.Len() != 1 {
		t.Fatalf("expected exactly one workspace to remain")
	}
}

func TestWorkspaces_CloseAdjustsActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		active     int
		close      int
		wantActive int
	}{
		{name: "close before active", active: 2, close: 0, wantActive: 1},
		{name: "close active", active: 1, close: 1, wantActive: 0},
		{name: "close after active", active: 0, close: 2, wantActive: 0},
		{name: "close first while first active", active: 0, close: 0, wantActive: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ws := NewWorkspaces()
			ws.Add()
			ws.Add()
			ws.Select(tt.active)
			ws.Close(tt.close)
			if ws.ActiveIndex() != tt.wantActive {
				t.Fatalf("active: got %d want %d", ws.ActiveIndex(), tt.wantActive)
			}
		})
	}
}

func TestWorkspaces_NextPrevWrap(t *testing.T) {
	t.Parallel()

	ws := NewWorkspaces()
	ws.Add()
	ws.Add()
	ws.Select(2)
	ws.Next()
	if ws.ActiveIndex() != 0 {
		t.Fatalf("Next wrap: got %d want 0", ws.ActiveIndex())
	}
	ws.Prev()
	if ws.ActiveIndex() != 2 {
		t.Fatalf("Prev wrap: got %d want 2", ws.ActiveIndex())
	}
}

func TestWorkspaces_AddToolReplaces(t *testing.T) {
	t.Parallel()

	ws := NewWorkspaces()
	ws.AddTool(KindChat, false)
	ws.AddTool(KindFlowchart, true)
	ws.AddTool(KindNotes, false)

	tools := ws.Active().Tools
	if len(tools) != 1 {
		t.Fatalf("expected a single tool, got %d", len(tools))
	}
	if tools[0].Kind != KindNotes || tools[0].Cell != (Cell{}) {
		t.Fatalf("unexpected tool: %+v", tools[0])
	}
}

func TestWorkspaces_AddToolToSide(t *testing.T) {
	t.Parallel()

	ws := NewWorkspaces()
	ws.AddTool(KindNotes, true)
	ws.AddTool(KindFlowchart, true)
	ws.AddTool(KindChat, true)

	var cells []Cell
	for _, tool := range ws.Active().Tools {
		cells = append(cells, tool.Cell)
	}
	want := []Cell{{Col: 0, Row: 0}, {Col: 1, Row: 0}, {Col: 2, Row: 0}}
	if diff := cmp.Diff(want, cells); diff != "" {
		t.Fatalf("cells mismatch (-want +got):\n%s", diff)
	}
	rows := ws.Active().Rows()
	if len(rows) != 1 || len(rows[0]) != 3 {
		t.Fatalf("expected one row of three tools, got %+v", rows)
	}
}

func TestWorkspaces_ToolsArePerWorkspace(t *testing.T) {
	t.Parallel()

	ws := NewWorkspaces()
	ws.AddTool(KindNotes, false)
	ws.Add()
	ws.AddTool(KindChat, false)
	ws.Select(0)

	if got := ws.Active().Tools[0].Kind; got != KindNotes {
		t.Fatalf("first workspace tool: got %q want notes", got)
	}
	if !ws.RemoveTool(ws.Active().Tools[0].ID) || len(ws.Active().Tools) != 0 {
		t.Fatalf("RemoveTool: expected tool removed")
	}
	second, _ := ws.At(1)
	if len(second.Tools) != 1 {
		t.Fatalf("removing from the first workspace touched the second")
	}
}

func TestWorkspace_RowsGroupAndSort(t *testing.T) {
	t.Parallel()

	w := &Workspace{Tools: []Tool{
		{ID: "c", Cell: Cell{Col: 1, Row: 2}},
		{ID: "a", Cell: Cell{Col: 1, Row: 0}},
		{ID: "b", Cell: Cell{Col: 0, Row: 0}},
		{ID: "d", Cell: Cell{Col: 0, Row: 2}},
	}}
	var got [][]string
	for _, row := range w.Rows() {
		var ids []string
		for _, tool := range row {
			ids = append(ids, tool.ID)
		}
		got = append(got, ids)
	}
	want := [][]string{{"b", "a"}, {"d", "c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRowHeights(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total, n, min int
		want          []int
	}{
		{total: 40, n: 1, min: 12, want: []int{40}},
		{total: 40, n: 2, min: 12, want: []int{28, 12}},
		{total: 20, n: 3, min: 12, want: []int{0, 12, 12}},
		{total: 40, n: 0, min: 12, want: nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, RowHeights(tt.total, tt.n, tt.min)); diff != "" {
			t.Fatalf("RowHeights(%d,%d,%d) mismatch (-want +got):\n%s", tt.total, tt.n, tt.min, diff)
		}
	}
}
