package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"probel/internal/model"
)

func TestChats_DefaultTitle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	u := mustUser(t, s, "a@example.com")

	c, err := s.CreateChat(ctx, u.ID, "")
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if c.Title != "New Chat" {
		t.Fatalf("title: got %q want New Chat", c.Title)
	}
	r, err := s.RenameChat(ctx, u.ID, c.ID, "Ideas")
	if err != nil || r.Title != "Ideas" {
		t.Fatalf("rename: got %+v, %v", r, err)
	}
}

func TestChats_MessagesOrderedAndTouchChat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	u := mustUser(t, s, "a@example.com")

	older, _ := s.CreateChat(ctx, u.ID, "older")
	newer, _ := s.CreateChat(ctx, u.ID, "newer")

	for _, m := range []model.ChatMessage{
		{ChatID: older.ID, Content: "hi", Sender: model.SenderUser},
		{ChatID: older.ID, Content: "hello", Sender: model.SenderAI, ContentBlocks: []model.ContentBlock{{Type: "text", Text: "hello"}}},
	} {
		if _, err := s.AddMessage(ctx, u.ID, m); err != nil {
			t.Fatalf("add message: %v", err)
		}
	}

	msgs, err := s.ListMessages(ctx, u.ID, older.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	var got []string
	for _, m := range msgs {
		got = append(got, string(m.Sender)+":"+m.Content)
	}
	if diff := cmp.Diff([]string{"user:hi", "ai:hello"}, got); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if len(msgs[1].ContentBlocks) != 1 || msgs[1].ContentBlocks[0].Text != "hello" {
		t.Fatalf("content blocks not kept: %+v", msgs[1].ContentBlocks)
	}

	chats, err := s.ListChats(ctx, u.ID)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if chats[0].ID != older.ID || chats[1].ID != newer.ID {
		t.Fatalf("adding a message must move the chat to the top: %+v", chats)
	}
}

func TestChats_DeleteRequiresMessagesGone(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	u := mustUser(t, s, "a@example.com")
	c, _ := s.CreateChat(ctx, u.ID, "doomed")
	for i := 0; i < 3; i++ {
		if _, err := s.AddMessage(ctx, u.ID, model.ChatMessage{ChatID: c.ID, Content: "m", Sender: model.SenderUser}); err != nil {
			t.Fatalf("add message: %v", err)
		}
	}

	if err := s.DeleteChat(ctx, u.ID, c.ID); !errors.Is(err, ErrChatHasMessages) {
		t.Fatalf("delete with messages: got %v want ErrChatHasMessages", err)
	}
	n, err := s.DeleteMessages(ctx, u.ID, c.ID)
	if err != nil || n != 3 {
		t.Fatalf("delete messages: n=%d err=%v", n, err)
	}
	if err := s.DeleteChat(ctx, u.ID, c.ID); err != nil {
		t.Fatalf("delete chat: %v", err)
	}
	var left int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM chat_messages WHERE chat_id = ?`, c.ID).Scan(&left); err != nil {
		t.Fatalf("count: %v", err)
	}
	if left != 0 {
		t.Fatalf("orphan messages: %d", left)
	}
	if _, err := s.GetChat(ctx, u.ID, c.ID); !IsNotFound(err) {
		t.Fatalf("get deleted chat: got %v want not found", err)
	}
}

func TestChats_AddMessageRejectsBadInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	u := mustUser(t, s, "a@example.com")
	other := mustUser(t, s, "b@example.com")
	c, _ := s.CreateChat(ctx, u.ID, "")

	if _, err := s.AddMessage(ctx, u.ID, model.ChatMessage{ChatID: c.ID, Content: "x", Sender: "robot"}); err == nil {
		t.Fatalf("expected invalid sender error")
	}
	if _, err := s.AddMessage(ctx, other.ID, model.ChatMessage{ChatID: c.ID, Content: "x", Sender: model.SenderUser}); !IsNotFound(err) {
		t.Fatalf("foreign chat: got %v want not found", err)
	}
}
