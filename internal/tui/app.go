package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"probel/internal/layout"
)

// shell is one of the mutually exclusive top-level layouts.
type shell interface {
	name() string
	resize(w, h int)
	// handleKey takes shell shortcuts; unhandled keys go to the focused page.
	handleKey(a *appModel, msg tea.KeyMsg) (bool, tea.Cmd)
	handleMouse(a *appModel, msg tea.MouseMsg) tea.Cmd
	focused() string
	view(a *appModel, w, h int) string
	help() []key.Binding
}

type appModel struct {
	svc Services
	log *zap.Logger

	pages map[string]page
	shell shell

	width  int
	height int

	showHelp bool
	user     string
}

func newAppModel(sh shell, svc Services, log *zap.Logger, user string) *appModel {
	return &appModel{
		svc:   svc,
		log:   log,
		pages: map[string]page{},
		shell: sh,
		user:  user,
	}
}

func (a *appModel) Init() tea.Cmd { return nil }

// mount creates the page behind a panel or tool and starts its data load.
func (a *appModel) mount(kind layout.Kind, id string) tea.Cmd {
	if _, ok := a.pages[id]; ok {
		return nil
	}
	p := newPage(kind, id, a.svc, a.log)
	a.pages[id] = p
	a.log.Debug("page mounted", zap.String("page", id), zap.String("kind", string(kind)))
	return p.Init()
}

func (a *appModel) unmount(ids ...string) {
	for _, id := range ids {
		if _, ok := a.pages[id]; ok {
			delete(a.pages, id)
			a.log.Debug("page unmounted", zap.String("page", id))
		}
	}
}

func (a *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.shell.resize(msg.Width, max(msg.Height-1, 0))
		return a, nil

	case pageMsg:
		p, ok := a.pages[msg.pageID]
		if !ok {
			a.log.Debug("dropping result for unmounted page", zap.String("page", msg.pageID))
			return a, nil
		}
		if cmds, ok := msg.msg.(tea.BatchMsg); ok {
			return a, batch(msg.pageID, cmds...)
		}
		return a, p.Update(msg.msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			return a, nil
		case a.showHelp && msg.String() == "esc":
			a.showHelp = false
			return a, nil
		}
		p, hasPage := a.pages[a.shell.focused()]
		if hasPage && p.Capturing() && key.Matches(msg, keys.TextEditing) {
			return a, p.Update(msg)
		}
		if handled, cmd := a.shell.handleKey(a, msg); handled {
			return a, cmd
		}
		if hasPage {
			return a, p.Update(msg)
		}
		return a, nil

	case tea.MouseMsg:
		return a, a.shell.handleMouse(a, msg)
	}
	return a, nil
}

func (a *appModel) View() string {
	if a.width <= 0 || a.height <= 0 {
		return ""
	}
	h := max(a.height-1, 0)
	body := a.shell.view(a, a.width, h)
	if a.showHelp {
		canvas := fitBlock(body, a.width, h)
		box := a.helpBox()
		x := max((a.width-xansi.StringWidth(box[0]))/2, 0)
		y := max((h-len(box))/2, 0)
		overlay(canvas, box, x, y, a.width)
		body = strings.Join(canvas, "\n")
	}
	return body + "\n" + a.statusBar()
}

func (a *appModel) statusBar() string {
	left := " probel · " + a.shell.name()
	if a.user != "" {
		left += " · " + a.user
	}
	right := "f1 help · ctrl+q quit "
	gap := max(a.width-xansi.StringWidth(left)-xansi.StringWidth(right), 1)
	line := fitLine(left+strings.Repeat(" ", gap)+right, a.width)
	return lipgloss.NewStyle().Foreground(colorSurfaceFg).Background(colorSurfaceBg).Render(line)
}

func (a *appModel) helpBox() []string {
	bindings := append([]key.Binding{keys.Quit, keys.Help}, a.shell.help()...)
	keyW := 0
	for _, b := range bindings {
		keyW = max(keyW, xansi.StringWidth(b.Help().Key))
	}
	var lines []string
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(fitLine(h.Key, keyW))+"  "+h.Desc)
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorderHot).
		Padding(0, 1).
		Render(styleHeading().Render("Keys") + "\n" + strings.Join(lines, "\n"))
	return strings.Split(box, "\n")
}
