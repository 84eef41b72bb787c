package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"probel/internal/layout"
	"probel/internal/service"
)

// page is one mounted tool instance: notes, flowcharts or AI chat.
type page interface {
	ID() string
	Kind() layout.Kind
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	// View renders the page into a w×h cell area.
	View(w, h int, focused bool) string
	// Capturing reports whether the page is editing text. While it is,
	// keys.TextEditing goes to the page instead of the shell.
	Capturing() bool
}

// pageMsg carries a message produced by a page's command back to that page.
// Messages for pages that are no longer mounted are dropped.
type pageMsg struct {
	pageID string
	msg    tea.Msg
}

// wrap tags the message cmd produces with the page id.
func wrap(pageID string, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		if msg == nil {
			return nil
		}
		return pageMsg{pageID: pageID, msg: msg}
	}
}

func batch(pageID string, cmds ...tea.Cmd) tea.Cmd {
	out := make([]tea.Cmd, 0, len(cmds))
	for _, c := range cmds {
		if c != nil {
			out = append(out, wrap(pageID, c))
		}
	}
	return tea.Batch(out...)
}

func newPage(kind layout.Kind, id string, svc Services, log *zap.Logger) page {
	switch kind {
	case layout.KindFlowchart:
		return newFlowchartPage(id, svc.Flowcharts, log)
	case layout.KindChat:
		return newChatPage(id, svc.Chats, svc.ChatFlow, log)
	default:
		return newNotesPage(id, svc.Notes, log)
	}
}

// errLine logs err and returns the short text shown in the page.
func errLine(log *zap.Logger, what string, err error) string {
	log.Warn(what, zap.Error(err))
	return service.UserMessage(err)
}
