package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"probel/internal/layout"
	"probel/internal/model"
)

type notesLoadedMsg struct {
	notes []model.Note
	err   error
}

type noteSavedMsg struct {
	note model.Note
	err  error
}

type noteDeletedMsg struct {
	id  string
	err error
}

const (
	noteFieldTitle = iota
	noteFieldTags
	noteFieldBody
	noteFieldCount
)

type notesPage struct {
	id  string
	svc NotesService
	log *zap.Logger

	notes []model.Note
	list  list.Model

	editing   bool
	editingID string
	title     textinput.Model
	tags      textinput.Model
	body      textarea.Model
	field     int
	preview   bool

	loading       bool
	saving        bool
	confirmDelete string

	status    string
	statusErr bool
}

func newNotesPage(id string, svc NotesService, log *zap.Logger) *notesPage {
	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = model.UntitledTitle
	title.CharLimit = 200

	tags := textinput.New()
	tags.Prompt = ""
	tags.Placeholder = "comma, separated"

	body := textarea.New()
	body.ShowLineNumbers = false
	body.Placeholder = "Start writing..."
	body.CharLimit = 0
	body.MaxHeight = 0

	return &notesPage{
		id:    id,
		svc:   svc,
		log:   log.With(zap.String("page", id)),
		list:  newList(),
		title: title,
		tags:  tags,
		body:  body,
	}
}

func (p *notesPage) ID() string        { return p.id }
func (p *notesPage) Kind() layout.Kind { return layout.KindNotes }
func (p *notesPage) Capturing() bool   { return p.editing }

func (p *notesPage) Init() tea.Cmd { return p.load() }

func (p *notesPage) load() tea.Cmd {
	p.loading = true
	svc := p.svc
	return wrap(p.id, func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		ns, err := svc.List(ctx)
		return notesLoadedMsg{notes: ns, err: err}
	})
}

func (p *notesPage) setStatus(s string, isErr bool) {
	p.status, p.statusErr = s, isErr
}

func (p *notesPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case notesLoadedMsg:
		p.loading = false
		if msg.err != nil {
			p.setStatus(errLine(p.log, "load notes failed", msg.err), true)
			return nil
		}
		p.notes = msg.notes
		p.refreshList()
		p.setStatus("", false)
		return nil

	case noteSavedMsg:
		p.saving = false
		if msg.err != nil {
			p.setStatus(errLine(p.log, "save note failed", msg.err), true)
			return nil
		}
		p.upsert(msg.note)
		if p.editing {
			p.editingID = msg.note.ID
			p.title.SetValue(msg.note.Title)
		}
		p.setStatus("Saved", false)
		return nil

	case noteDeletedMsg:
		if msg.err != nil {
			p.setStatus(errLine(p.log, "delete note failed", msg.err), true)
			return nil
		}
		p.remove(msg.id)
		p.setStatus("Deleted", false)
		return nil

	case editorDoneMsg:
		text, changed, err := readEditorResult(msg)
		switch {
		case !p.editing:
		case err != nil:
			p.setStatus(errLine(p.log, "external editor failed", err), true)
		case !changed:
			p.setStatus("No changes from editor", false)
		default:
			p.body.SetValue(text)
			p.setStatus("Updated from editor (ctrl+s to save)", false)
		}
		return nil

	case tea.KeyMsg:
		if p.editing {
			return p.updateEditor(msg)
		}
		return p.updateList(msg)
	}

	if p.editing {
		return p.forward(msg)
	}
	return nil
}

func (p *notesPage) updateList(msg tea.KeyMsg) tea.Cmd {
	if p.confirmDelete != "" {
		id := p.confirmDelete
		p.confirmDelete = ""
		if msg.String() == "y" {
			return p.delete(id)
		}
		p.setStatus("", false)
		return nil
	}
	switch msg.String() {
	case "enter":
		if n, ok := p.selected(); ok {
			return p.openEditor(n)
		}
		return nil
	case "n":
		return p.openEditor(model.Note{})
	case "d":
		if n, ok := p.selected(); ok {
			p.confirmDelete = n.ID
			p.setStatus(fmt.Sprintf("Delete %q? y/n", n.Title), false)
		}
		return nil
	case "r":
		return p.load()
	}
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return wrap(p.id, cmd)
}

func (p *notesPage) updateEditor(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.editing = false
		p.preview = false
		p.setStatus("", false)
		return nil
	case "ctrl+s":
		return p.save()
	case "ctrl+p":
		p.preview = !p.preview
		return nil
	case "ctrl+e":
		cmd, err := openInEditor(p.id, p.body.Value())
		if err != nil {
			p.setStatus(errLine(p.log, "external editor failed", err), true)
			return nil
		}
		return cmd
	case "tab":
		return p.focusField((p.field + 1) % noteFieldCount)
	case "shift+tab":
		return p.focusField((p.field + noteFieldCount - 1) % noteFieldCount)
	}
	return p.forward(msg)
}

func (p *notesPage) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch p.field {
	case noteFieldTitle:
		p.title, cmd = p.title.Update(msg)
	case noteFieldTags:
		p.tags, cmd = p.tags.Update(msg)
	default:
		p.body, cmd = p.body.Update(msg)
	}
	return wrap(p.id, cmd)
}

func (p *notesPage) focusField(f int) tea.Cmd {
	p.field = f
	p.title.Blur()
	p.tags.Blur()
	p.body.Blur()
	switch f {
	case noteFieldTitle:
		return wrap(p.id, p.title.Focus())
	case noteFieldTags:
		return wrap(p.id, p.tags.Focus())
	default:
		return wrap(p.id, p.body.Focus())
	}
}

func (p *notesPage) openEditor(n model.Note) tea.Cmd {
	p.editing = true
	p.preview = false
	p.editingID = n.ID
	p.title.SetValue(n.Title)
	p.tags.SetValue(strings.Join(n.Tags, ", "))
	p.body.SetValue(n.Content)
	p.setStatus("", false)
	if n.ID == "" {
		return p.focusField(noteFieldTitle)
	}
	return p.focusField(noteFieldBody)
}

func splitTags(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (p *notesPage) save() tea.Cmd {
	if p.saving {
		return nil
	}
	p.saving = true
	p.setStatus("Saving...", false)
	svc, id := p.svc, p.editingID
	title := strings.TrimSpace(p.title.Value())
	tags := splitTags(p.tags.Value())
	content := p.body.Value()
	return wrap(p.id, func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		if id == "" {
			n, err := svc.Create(ctx, model.Note{Title: title, Content: content, Tags: tags})
			return noteSavedMsg{note: n, err: err}
		}
		n, err := svc.Update(ctx, id, model.NotePatch{Title: &title, Content: &content, Tags: &tags})
		return noteSavedMsg{note: n, err: err}
	})
}

func (p *notesPage) delete(id string) tea.Cmd {
	svc := p.svc
	p.setStatus("Deleting...", false)
	return wrap(p.id, func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		return noteDeletedMsg{id: id, err: svc.Delete(ctx, id)}
	})
}

func (p *notesPage) selected() (model.Note, bool) {
	id := selectedID(p.list)
	for _, n := range p.notes {
		if n.ID == id {
			return n, true
		}
	}
	return model.Note{}, false
}

// upsert puts n first: it is the most recently updated note.
func (p *notesPage) upsert(n model.Note) {
	out := make([]model.Note, 0, len(p.notes)+1)
	out = append(out, n)
	for _, x := range p.notes {
		if x.ID != n.ID {
			out = append(out, x)
		}
	}
	p.notes = out
	p.refreshList()
	selectByID(&p.list, n.ID)
}

func (p *notesPage) remove(id string) {
	out := p.notes[:0:0]
	for _, x := range p.notes {
		if x.ID != id {
			out = append(out, x)
		}
	}
	p.notes = out
	if p.editingID == id {
		p.editing = false
		p.editingID = ""
	}
	p.refreshList()
}

func (p *notesPage) refreshList() {
	cur := selectedID(p.list)
	items := make([]list.Item, 0, len(p.notes))
	for _, n := range p.notes {
		items = append(items, rowItem{id: n.ID, title: n.Title, meta: relTime(n.LastUpdated)})
	}
	p.list.SetItems(items)
	if cur != "" {
		selectByID(&p.list, cur)
	}
}

func (p *notesPage) statusLine(w int) string {
	switch {
	case p.status == "":
		return ""
	case p.statusErr:
		return styleError().Render(truncate(p.status, w))
	}
	return styleMuted().Render(truncate(p.status, w))
}

func (p *notesPage) View(w, h int, focused bool) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	if p.editing {
		return p.viewEditor(w, h, focused)
	}
	head := styleHeading().Render(fmt.Sprintf("Notes (%d)", len(p.notes)))
	hint := styleMuted().Render(truncate("n new · enter open · d delete · r reload", w))
	lines := []string{head, hint}
	switch {
	case p.loading:
		lines = append(lines, styleMuted().Render("Loading..."))
	case len(p.notes) == 0 && !p.statusErr:
		lines = append(lines, styleMuted().Render("No notes yet. Press n to write one."))
	}
	if s := p.statusLine(w); s != "" {
		lines = append(lines, s)
	}
	p.list.SetSize(w, max(h-len(lines), 0))
	if !p.loading && len(p.notes) > 0 {
		lines = append(lines, p.list.View())
	}
	return strings.Join(lines, "\n")
}

func (p *notesPage) viewEditor(w, h int, focused bool) string {
	label := func(s string, f int) string {
		st := styleMuted()
		if focused && p.field == f {
			st = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
		}
		return st.Render(s)
	}
	p.title.Width = max(w-8, 1)
	p.tags.Width = max(w-8, 1)
	top := []string{
		label("Title ", noteFieldTitle) + "  " + p.title.View(),
		label("Tags  ", noteFieldTags) + "  " + p.tags.View(),
	}
	hint := styleMuted().Render(truncate("ctrl+s save · tab field · ctrl+p preview · ctrl+e editor · esc back", w))
	bottom := []string{hint}
	if s := p.statusLine(w); s != "" {
		bottom = append(bottom, s)
	}
	bodyH := max(h-len(top)-len(bottom), 1)

	var body string
	if p.preview {
		body = renderMarkdown(p.body.Value(), w)
		if body == "" {
			body = styleMuted().Render("Nothing to preview.")
		}
	} else {
		p.body.SetWidth(w)
		p.body.SetHeight(bodyH)
		body = p.body.View()
	}
	out := append(top, fitBlock(body, w, bodyH)...)
	out = append(out, bottom...)
	return strings.Join(out, "\n")
}
