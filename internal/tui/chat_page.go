package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"probel/internal/layout"
	"probel/internal/model"
	"probel/internal/service"
)

type chatsLoadedMsg struct {
	chats []model.Chat
	err   error
}

type messagesLoadedMsg struct {
	chatID   string
	messages []model.ChatMessage
	err      error
}

type chatCreatedMsg struct {
	chat model.Chat
	err  error
}

type chatDeletedMsg struct {
	id  string
	err error
}

type chatSentMsg struct {
	chatID string
	res    service.SendResult
	err    error
}

const chatSidebarWidth = 26

type chatPage struct {
	id   string
	svc  ChatsService
	flow ChatSender
	log  *zap.Logger

	chats []model.Chat
	list  list.Model

	selected    string
	messages    []model.ChatMessage
	loadingMsgs bool

	input      textinput.Model
	focusInput bool

	sending bool
	pending string
	spin    spinner.Model

	vp          viewport.Model
	version     int
	renderedVer int
	renderedW   int

	loading       bool
	confirmDelete string

	status    string
	statusErr bool
}

func newChatPage(id string, svc ChatsService, flow ChatSender, log *zap.Logger) *chatPage {
	in := textinput.New()
	in.Prompt = glyphs().prompt + " "
	in.Placeholder = "Ask anything..."
	in.CharLimit = 4000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &chatPage{
		id:          id,
		svc:         svc,
		flow:        flow,
		log:         log.With(zap.String("page", id)),
		list:        newList(),
		input:       in,
		focusInput:  true,
		spin:        sp,
		vp:          viewport.New(0, 0),
		renderedVer: -1,
	}
}

func (p *chatPage) ID() string        { return p.id }
func (p *chatPage) Kind() layout.Kind { return layout.KindChat }
func (p *chatPage) Capturing() bool   { return p.focusInput }
func (p *chatPage) Init() tea.Cmd     { return p.loadChats() }

func (p *chatPage) setStatus(s string, isErr bool) { p.status, p.statusErr = s, isErr }

func (p *chatPage) loadChats() tea.Cmd {
	p.loading = true
	svc := p.svc
	return wrap(p.id, func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		cs, err := svc.List(ctx)
		return chatsLoadedMsg{chats: cs, err: err}
	})
}

func (p *chatPage) loadMessages(chatID string) tea.Cmd {
	p.loadingMsgs = true
	svc := p.svc
	return wrap(p.id, func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		ms, err := svc.Messages(ctx, chatID)
		return messagesLoadedMsg{chatID: chatID, messages: ms, err: err}
	})
}

func (p *chatPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case chatsLoadedMsg:
		p.loading = false
		if msg.err != nil {
			p.setStatus(errLine(p.log, "load chats failed", msg.err), true)
			return nil
		}
		p.chats = msg.chats
		p.refreshList()
		return nil

	case messagesLoadedMsg:
		if msg.chatID != p.selected {
			return nil
		}
		p.loadingMsgs = false
		if msg.err != nil {
			p.setStatus(errLine(p.log, "load messages failed", msg.err), true)
			return nil
		}
		p.messages = msg.messages
		p.version++
		return nil

	case chatCreatedMsg:
		if msg.err != nil {
			p.setStatus(errLine(p.log, "create chat failed", msg.err), true)
			return nil
		}
		p.addChat(msg.chat)
		p.selectChat(msg.chat.ID)
		p.messages = nil
		p.version++
		return nil

	case chatDeletedMsg:
		if msg.err != nil {
			p.setStatus(errLine(p.log, "delete chat failed", msg.err), true)
			return nil
		}
		p.removeChat(msg.id)
		p.setStatus("Chat deleted", false)
		return nil

	case chatSentMsg:
		return p.onSent(msg)

	case spinner.TickMsg:
		if !p.sending {
			return nil
		}
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		return wrap(p.id, cmd)

	case tea.KeyMsg:
		if p.focusInput {
			return p.updateInput(msg)
		}
		return p.updateList(msg)
	}

	if p.focusInput {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return wrap(p.id, cmd)
	}
	return nil
}

func (p *chatPage) updateList(msg tea.KeyMsg) tea.Cmd {
	if p.confirmDelete != "" {
		id := p.confirmDelete
		p.confirmDelete = ""
		if msg.String() == "y" {
			return p.deleteChat(id)
		}
		p.setStatus("", false)
		return nil
	}
	switch msg.String() {
	case "tab", "i":
		p.focusInput = true
		return wrap(p.id, p.input.Focus())
	case "enter":
		if id := selectedID(p.list); id != "" && id != p.selected {
			p.selectChat(id)
			p.focusInput = true
			return batch(p.id, p.loadMessages(id), p.input.Focus())
		}
		return nil
	case "n":
		svc := p.svc
		return wrap(p.id, func() tea.Msg {
			ctx, cancel := callCtx()
			defer cancel()
			c, err := svc.Create(ctx, "")
			return chatCreatedMsg{chat: c, err: err}
		})
	case "d":
		if id := selectedID(p.list); id != "" {
			p.confirmDelete = id
			p.setStatus(fmt.Sprintf("Delete %q and its messages? y/n", p.titleOf(id)), false)
		}
		return nil
	case "r":
		return p.loadChats()
	}
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return wrap(p.id, cmd)
}

func (p *chatPage) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "esc":
		p.focusInput = false
		p.input.Blur()
		return nil
	case "enter":
		return p.send()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		p.vp, cmd = p.vp.Update(msg)
		return wrap(p.id, cmd)
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return wrap(p.id, cmd)
}

// send starts one turn. It does nothing while a turn is outstanding or
// the selected chat's history has not arrived yet.
func (p *chatPage) send() tea.Cmd {
	text := strings.TrimSpace(p.input.Value())
	if p.sending || p.loadingMsgs || text == "" {
		return nil
	}
	p.sending = true
	p.pending = text
	p.input.Reset()
	p.setStatus("", false)
	p.version++

	flow, chatID := p.flow, p.selected
	history := append([]model.ChatMessage(nil), p.messages...)
	send := func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		res, err := flow.Send(ctx, chatID, history, text)
		return chatSentMsg{chatID: chatID, res: res, err: err}
	}
	return batch(p.id, send, p.spin.Tick)
}

func (p *chatPage) onSent(msg chatSentMsg) tea.Cmd {
	p.sending = false
	p.pending = ""
	p.version++
	if msg.err != nil {
		p.setStatus(errLine(p.log, "send message failed", msg.err), true)
	}
	if msg.res.Chat != nil {
		p.addChat(*msg.res.Chat)
		if p.selected == "" {
			p.selectChat(msg.res.Chat.ID)
		}
	}
	target := msg.chatID
	if target == "" && msg.res.Chat != nil {
		target = msg.res.Chat.ID
	}
	if target != p.selected {
		return nil
	}
	if msg.res.User != nil {
		p.messages = append(p.messages, *msg.res.User)
	}
	if msg.res.Reply.Content != "" {
		p.messages = append(p.messages, msg.res.Reply)
	}
	p.touch(target)
	return nil
}

func (p *chatPage) deleteChat(id string) tea.Cmd {
	svc := p.svc
	p.setStatus("Deleting...", false)
	return wrap(p.id, func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		return chatDeletedMsg{id: id, err: svc.Delete(ctx, id)}
	})
}

func (p *chatPage) selectChat(id string) {
	p.selected = id
	p.messages = nil
	p.loadingMsgs = false
	p.version++
	selectByID(&p.list, id)
}

func (p *chatPage) addChat(c model.Chat) {
	for _, x := range p.chats {
		if x.ID == c.ID {
			return
		}
	}
	p.chats = append([]model.Chat{c}, p.chats...)
	p.refreshList()
}

// touch moves a chat to the top, matching the backend's recency order.
func (p *chatPage) touch(id string) {
	for i, c := range p.chats {
		if c.ID == id {
			c.LastUpdated = now()
			p.chats = append(append([]model.Chat{c}, p.chats[:i]...), p.chats[i+1:]...)
			p.refreshList()
			selectByID(&p.list, p.selected)
			return
		}
	}
}

func (p *chatPage) removeChat(id string) {
	out := p.chats[:0:0]
	for _, c := range p.chats {
		if c.ID != id {
			out = append(out, c)
		}
	}
	p.chats = out
	if p.selected == id {
		p.selected = ""
		p.messages = nil
		p.loadingMsgs = false
		p.version++
	}
	p.refreshList()
}

func (p *chatPage) titleOf(id string) string {
	for _, c := range p.chats {
		if c.ID == id {
			return c.Title
		}
	}
	return id
}

func (p *chatPage) refreshList() {
	cur := selectedID(p.list)
	items := make([]list.Item, 0, len(p.chats))
	for _, c := range p.chats {
		title := c.Title
		if c.ID == p.selected {
			title = glyphs().bullet + " " + title
		}
		items = append(items, rowItem{id: c.ID, title: title, meta: relTime(c.LastUpdated)})
	}
	p.list.SetItems(items)
	if cur != "" {
		selectByID(&p.list, cur)
	}
}

// transcript renders every message for a column of width w.
func (p *chatPage) transcript(w int) string {
	if len(p.messages) == 0 && p.pending == "" {
		if p.loadingMsgs {
			return styleMuted().Render("Loading messages...")
		}
		return styleMuted().Render("Start a conversation. Type a message and press enter.")
	}
	you := lipgloss.NewStyle().Bold(true).Foreground(colorUserMsg)
	ai := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	wrapW := lipgloss.NewStyle().Width(max(w, 1))

	var b strings.Builder
	for i, m := range p.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if m.Sender == model.SenderUser {
			b.WriteString(you.Render("You") + "\n" + wrapW.Render(m.Content))
			continue
		}
		body := renderMarkdown(m.Content, w)
		if m.Content == model.AIErrorReply {
			body = styleError().Render(wrapW.Render(m.Content))
		}
		b.WriteString(ai.Render("AI") + "\n" + body)
	}
	if p.pending != "" {
		if len(p.messages) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(you.Render("You") + "\n" + wrapW.Render(p.pending))
	}
	return b.String()
}

func (p *chatPage) View(w, h int, focused bool) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	sideW := 0
	if w >= 60 {
		sideW = min(chatSidebarWidth, w/3)
	}
	mainW := w - sideW
	if sideW > 0 {
		mainW--
	}

	main := p.viewMain(mainW, h, focused)
	if sideW == 0 {
		return strings.Join(main, "\n")
	}
	side := p.viewSidebar(sideW, h, focused)
	rows := make([]string, h)
	for i := range rows {
		rows[i] = side[i] + styleMuted().Render(glyphs().vertical) + main[i]
	}
	return strings.Join(rows, "\n")
}

func (p *chatPage) viewSidebar(w, h int, focused bool) []string {
	head := styleHeading()
	if focused && !p.focusInput {
		head = head.Foreground(colorAccent)
	}
	lines := []string{
		head.Render(truncate(fmt.Sprintf("Chats (%d)", len(p.chats)), w)),
		styleMuted().Render(truncate("n new · d delete · tab", w)),
	}
	if p.loading {
		lines = append(lines, styleMuted().Render("Loading..."))
	}
	p.list.SetSize(w, max(h-len(lines), 0))
	lines = append(lines, p.list.View())
	return fitBlock(strings.Join(lines, "\n"), w, h)
}

func (p *chatPage) viewMain(w, h int, focused bool) []string {
	title := "New conversation"
	if p.selected != "" {
		title = p.titleOf(p.selected)
	}
	top := []string{styleHeading().Render(truncate(title, w))}

	var bottom []string
	if p.sending {
		bottom = append(bottom, p.spin.View()+styleMuted().Render(" Thinking..."))
	}
	if p.status != "" {
		st := styleMuted()
		if p.statusErr {
			st = styleError()
		}
		bottom = append(bottom, st.Render(truncate(p.status, w)))
	}
	p.input.Width = max(w-3, 1)
	if focused && p.focusInput {
		bottom = append(bottom, p.input.View())
	} else {
		bottom = append(bottom, styleMuted().Render(truncate(glyphs().prompt+" press tab to type", w)))
	}

	vpH := max(h-len(top)-len(bottom), 1)
	p.vp.Width, p.vp.Height = w, vpH
	if p.renderedVer != p.version || p.renderedW != w {
		p.vp.SetContent(p.transcript(w))
		p.vp.GotoBottom()
		p.renderedVer, p.renderedW = p.version, w
	}
	out := append(top, fitBlock(p.vp.View(), w, vpH)...)
	out = append(out, bottom...)
	return fitBlock(strings.Join(out, "\n"), w, h)
}
