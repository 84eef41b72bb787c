package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// rowItem is one line in a page list: a title and a right-aligned meta.
type rowItem struct {
	id    string
	title string
	meta  string
}

func (r rowItem) FilterValue() string { return r.title }

// rowDelegate renders one cell-high rows, highlighting the selection.
type rowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	meta     lipgloss.Style
}

func newRowDelegate() rowDelegate {
	return rowDelegate{
		normal:   lipgloss.NewStyle(),
		selected: styleSelected(),
		meta:     styleMuted(),
	}
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	width := m.Width()
	it, ok := item.(rowItem)
	if width < 4 || !ok {
		return
	}
	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	meta := it.meta
	metaW := xansi.StringWidth(meta)
	if metaW > width/3 {
		meta, metaW = "", 0
	}
	titleW := width - metaW
	if metaW > 0 {
		titleW--
	}
	title := truncate(it.title, titleW)
	gap := max(width-xansi.StringWidth(title)-metaW, 0)
	line := title + strings.Repeat(" ", gap)
	if metaW > 0 {
		line += d.meta.Render(meta)
	}
	fmt.Fprint(w, style.Render(line))
}

// newList builds a chrome-less list. Quit and filter keys are off so the
// surrounding shell owns them.
func newList() list.Model {
	l := list.New(nil, newRowDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.KeyMap.CursorUp.SetKeys("up", "k", "ctrl+p")
	l.KeyMap.CursorDown.SetKeys("down", "j")
	return l
}

// selectByID moves the cursor to the item with id, if present.
func selectByID(l *list.Model, id string) {
	for i, it := range l.Items() {
		if r, ok := it.(rowItem); ok && r.id == id {
			l.Select(i)
			return
		}
	}
}

func selectedID(l list.Model) string {
	if r, ok := l.SelectedItem().(rowItem); ok {
		return r.id
	}
	return ""
}
