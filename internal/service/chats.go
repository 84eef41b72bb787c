package service

import (
	"context"
	"net/http"
	"net/url"

	"probel/internal/model"
)

type Chats struct{ c *Client }

func NewChats(c *Client) *Chats { return &Chats{c: c} }

type chatInput struct {
	Title string `json:"title"`
}

func (s *Chats) List(ctx context.Context) ([]model.Chat, error) {
	var out []model.Chat
	err := s.c.do(ctx, http.MethodGet, "/rest/v1/chats", nil, nil, &out)
	return out, err
}

func (s *Chats) Get(ctx context.Context, id string) (model.Chat, error) {
	var out model.Chat
	err := s.c.do(ctx, http.MethodGet, "/rest/v1/chats/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Create starts a chat; an empty title becomes "New Chat".
func (s *Chats) Create(ctx context.Context, title string) (model.Chat, error) {
	var out model.Chat
	err := s.c.do(ctx, http.MethodPost, "/rest/v1/chats", nil, chatInput{Title: title}, &out)
	return out, err
}

func (s *Chats) Rename(ctx context.Context, id, title string) (model.Chat, error) {
	var out model.Chat
	err := s.c.do(ctx, http.MethodPatch, "/rest/v1/chats/"+url.PathEscape(id), nil, chatInput{Title: title}, &out)
	return out, err
}

// Delete removes the chat's messages, then the chat.
func (s *Chats) Delete(ctx context.Context, id string) error {
	if err := s.c.do(ctx, http.MethodDelete, "/rest/v1/chat_messages", url.Values{"chat_id": {id}}, nil, nil); err != nil {
		return err
	}
	return s.c.do(ctx, http.MethodDelete, "/rest/v1/chats/"+url.PathEscape(id), nil, nil, nil)
}

// Messages returns a chat's messages oldest first.
func (s *Chats) Messages(ctx context.Context, chatID string) ([]model.ChatMessage, error) {
	var out []model.ChatMessage
	err := s.c.do(ctx, http.MethodGet, "/rest/v1/chats/"+url.PathEscape(chatID)+"/messages", nil, nil, &out)
	return out, err
}

func (s *Chats) AddMessage(ctx context.Context, m model.ChatMessage) (model.ChatMessage, error) {
	var out model.ChatMessage
	err := s.c.do(ctx, http.MethodPost, "/rest/v1/chats/"+url.PathEscape(m.ChatID)+"/messages", nil, m, &out)
	return out, err
}
