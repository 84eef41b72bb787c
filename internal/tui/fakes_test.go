package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"probel/internal/model"
	"probel/internal/service"
)

type fakeNotes struct {
	mu    sync.Mutex
	notes []model.Note
	seq   int
}

func (f *fakeNotes) List(context.Context) ([]model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Note(nil), f.notes...), nil
}

func (f *fakeNotes) Create(_ context.Context, in model.Note) (model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	in.ID = fmt.Sprintf("note-%d", f.seq)
	if in.Title == "" {
		in.Title = model.UntitledTitle
	}
	in.LastUpdated = time.Now()
	f.notes = append([]model.Note{in}, f.notes...)
	return in, nil
}

func (f *fakeNotes) Update(_ context.Context, id string, p model.NotePatch) (model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notes {
		if n.ID != id {
			continue
		}
		if p.Title != nil {
			n.Title = *p.Title
		}
		if p.Content != nil {
			n.Content = *p.Content
		}
		if p.Tags != nil {
			n.Tags = *p.Tags
		}
		f.notes[i] = n
		return n, nil
	}
	return model.Note{}, service.UpstreamError{Status: 404, Message: "not found"}
}

func (f *fakeNotes) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notes {
		if n.ID == id {
			f.notes = append(f.notes[:i:i], f.notes[i+1:]...)
			return nil
		}
	}
	return service.UpstreamError{Status: 404, Message: "not found"}
}

type fakeFlowcharts struct{}

func (fakeFlowcharts) List(context.Context) ([]model.Flowchart, error) { return nil, nil }

func (fakeFlowcharts) Create(_ context.Context, in model.Flowchart) (model.Flowchart, error) {
	in.ID = "fc-1"
	return in, nil
}

func (fakeFlowcharts) Update(_ context.Context, id string, _ model.FlowchartPatch) (model.Flowchart, error) {
	return model.Flowchart{ID: id}, nil
}

func (fakeFlowcharts) Delete(context.Context, string) error { return nil }

type fakeChats struct {
	chats    []model.Chat
	messages map[string][]model.ChatMessage
}

func (f *fakeChats) List(context.Context) ([]model.Chat, error) { return f.chats, nil }

func (f *fakeChats) Create(_ context.Context, title string) (model.Chat, error) {
	return model.Chat{ID: "chat-new", Title: title}, nil
}

func (f *fakeChats) Delete(context.Context, string) error { return nil }

func (f *fakeChats) Messages(_ context.Context, chatID string) ([]model.ChatMessage, error) {
	return f.messages[chatID], nil
}

// fakeFlow answers every turn by creating chat "chat-1" when none is given.
type fakeFlow struct {
	mu      sync.Mutex
	calls   int
	history []model.ChatMessage
}

func (f *fakeFlow) Send(_ context.Context, chatID string, history []model.ChatMessage, text string) (service.SendResult, error) {
	f.mu.Lock()
	f.calls++
	f.history = history
	f.mu.Unlock()
	var res service.SendResult
	if chatID == "" {
		chatID = "chat-1"
		res.Chat = &model.Chat{ID: chatID, Title: text}
		res.Created = true
	}
	res.User = &model.ChatMessage{ID: "m-user", ChatID: chatID, Content: text, Sender: model.SenderUser}
	res.Reply = model.ChatMessage{ID: "m-ai", ChatID: chatID, Content: "echo: " + text, Sender: model.SenderAI}
	return res, nil
}

func testServices() Services {
	return Services{
		Notes: &fakeNotes{notes: []model.Note{
			{ID: "a", Title: "Alpha"},
			{ID: "b", Title: "Beta"},
		}},
		Flowcharts: fakeFlowcharts{},
		Chats:      &fakeChats{messages: map[string][]model.ChatMessage{}},
		ChatFlow:   &fakeFlow{},
	}
}
