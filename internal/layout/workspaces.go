package layout

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Cell is a grid coordinate: column and row, not pixels.
type Cell struct {
	Col int `json:"x"`
	Row int `json:"y"`
}

// Tool is one tool instance placed in a workspace grid.
type Tool struct {
	ID   string `json:"id"`
	Kind Kind   `json:"type"`
	Cell Cell   `json:"position"`
}

type Workspace struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Tools []Tool `json:"tools"`
}

// Workspaces is an ordered set of tabbed workspaces with one active. At
// least one workspace always exists.
type Workspaces struct {
	list   []*Workspace
	active int
}

func NewWorkspaces() *Workspaces {
	return &Workspaces{
		list: []*Workspace{{ID: "default", Name: "Workspace 1"}},
	}
}

func (ws *Workspaces) Len() int         { return len(ws.list) }
func (ws *Workspaces) ActiveIndex() int { return ws.active }

func (ws *Workspaces) Active() *Workspace { return ws.list[ws.active] }

func (ws *Workspaces) At(i int) (*Workspace, bool) {
	if i < 0 || i >= len(ws.list) {
		return nil, false
	}
	return ws.list[i], true
}

func (ws *Workspaces) All() []*Workspace {
	out := make([]*Workspace, len(ws.list))
	copy(out, ws.list)
	return out
}

// Add appends an empty workspace with a generated name and activates it.
func (ws *Workspaces) Add() *Workspace {
	w := &Workspace{
		ID:   "workspace-" + uuid.NewString(),
		Name: fmt.Sprintf("Workspace %d", len(ws.list)+1),
	}
	ws.list = append(ws.list, w)
	ws.active = len(ws.list) - 1
	return w
}

// Close removes the workspace at i. The last remaining workspace is never
// removed. When the removed index is at or before the active one, the
// active index moves back to stay on a valid neighbour.
func (ws *Workspaces) Close(i int) bool {
	if len(ws.list) <= 1 || i < 0 || i >= len(ws.list) {
		return false
	}
	ws.list = append(ws.list[:i:i], ws.list[i+1:]...)
	if ws.active >= i && ws.active > 0 {
		ws.active--
	}
	return true
}

func (ws *Workspaces) Select(i int) bool {
	if i < 0 || i >= len(ws.list) {
		return false
	}
	ws.active = i
	return true
}

// Next and Prev cycle the active workspace.
func (ws *Workspaces) Next() { ws.active = (ws.active + 1) % len(ws.list) }
func (ws *Workspaces) Prev() { ws.active = (ws.active - 1 + len(ws.list)) % len(ws.list) }

// AddTool places a tool in the active workspace. With addToSide and existing
// tools the new tool extends the last row by one column; otherwise it
// replaces every tool with a single one at the origin cell.
func (ws *Workspaces) AddTool(kind Kind, addToSide bool) Tool {
	w := ws.Active()
	t := Tool{ID: string(kind) + "-" + uuid.NewString(), Kind: kind}
	if addToSide && len(w.Tools) > 0 {
		row := 0
		for _, existing := range w.Tools {
			row = max(row, existing.Cell.Row)
		}
		col := -1
		for _, existing := range w.Tools {
			if existing.Cell.Row == row {
				col = max(col, existing.Cell.Col)
			}
		}
		t.Cell = Cell{Col: col + 1, Row: row}
		w.Tools = append(w.Tools, t)
		return t
	}
	w.Tools = []Tool{t}
	return t
}

// RemoveTool drops a tool from the active workspace.
func (ws *Workspaces) RemoveTool(id string) bool {
	w := ws.Active()
	for i, t := range w.Tools {
		if t.ID == id {
			w.Tools = append(w.Tools[:i:i], w.Tools[i+1:]...)
			return true
		}
	}
	return false
}

// Rows groups the tools of w by row, ordered by row then column. Empty rows
// are skipped.
func (w *Workspace) Rows() [][]Tool {
	maxRow := -1
	for _, t := range w.Tools {
		maxRow = max(maxRow, t.Cell.Row)
	}
	rows := make([][]Tool, 0, maxRow+1)
	for r := 0; r <= maxRow; r++ {
		var row []Tool
		for _, t := range w.Tools {
			if t.Cell.Row == r {
				row = append(row, t)
			}
		}
		if len(row) == 0 {
			continue
		}
		sort.SliceStable(row, func(i, j int) bool { return row[i].Cell.Col < row[j].Cell.Col })
		rows = append(rows, row)
	}
	return rows
}

// RowHeights splits total height across n rows: the first row takes what is
// left after every later row gets minRow.
func RowHeights(total, n, minRow int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := 1; i < n; i++ {
		out[i] = minRow
	}
	out[0] = max(total-(n-1)*minRow, 0)
	return out
}
