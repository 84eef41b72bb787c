package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"probel/internal/logging"
	"probel/internal/model"
)

const chatTitleMax = 40

// ChatFlow sends one user turn: persist the user message, ask the AI with the
// prior history, persist the reply.
type ChatFlow struct {
	chats *Chats
	ai    Completer
	log   *zap.Logger
}

func NewChatFlow(chats *Chats, ai Completer, log *zap.Logger) *ChatFlow {
	return &ChatFlow{chats: chats, ai: ai, log: logging.OrNop(log)}
}

// SendResult is what the chat page shows after a send. Reply is always set:
// on failure it is the error reply. User is nil when the user message could
// not be saved.
type SendResult struct {
	Chat    *model.Chat
	User    *model.ChatMessage
	Reply   model.ChatMessage
	Created bool
}

// Send runs one turn in chatID. An empty chatID creates a chat titled after
// the text. Messages saved before a failure are kept; the failure itself is
// saved, best effort, as an error reply.
func (f *ChatFlow) Send(ctx context.Context, chatID string, history []model.ChatMessage, text string) (SendResult, error) {
	var res SendResult
	text = strings.TrimSpace(text)
	if text == "" {
		return res, nil
	}

	if chatID == "" {
		c, err := f.chats.Create(ctx, titleFrom(text))
		if err != nil {
			f.log.Warn("create chat failed", zap.Error(err))
			res.Reply = errorReply("")
			return res, err
		}
		res.Chat = &c
		res.Created = true
		chatID = c.ID
	}

	user, err := f.chats.AddMessage(ctx, model.ChatMessage{ChatID: chatID, Content: text, Sender: model.SenderUser})
	if err != nil {
		return f.fail(ctx, res, chatID, err)
	}
	res.User = &user

	reply, err := f.ai.Complete(ctx, history, text)
	if err != nil {
		return f.fail(ctx, res, chatID, err)
	}

	saved, err := f.chats.AddMessage(ctx, model.ChatMessage{
		ChatID:        chatID,
		Content:       reply.Text,
		Sender:        model.SenderAI,
		ContentBlocks: reply.Blocks,
	})
	if err != nil {
		return f.fail(ctx, res, chatID, err)
	}
	res.Reply = saved
	return res, nil
}

func (f *ChatFlow) fail(ctx context.Context, res SendResult, chatID string, cause error) (SendResult, error) {
	f.log.Error("chat send failed", zap.String("chat", chatID), zap.Error(cause))
	res.Reply = errorReply(chatID)
	saved, err := f.chats.AddMessage(ctx, res.Reply)
	if err != nil {
		f.log.Warn("persist error reply failed", zap.String("chat", chatID), zap.Error(err))
	} else {
		res.Reply = saved
	}
	return res, cause
}

func errorReply(chatID string) model.ChatMessage {
	return model.ChatMessage{ChatID: chatID, Content: model.AIErrorReply, Sender: model.SenderAI}
}

func titleFrom(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= chatTitleMax {
		return line
	}
	r := []rune(line)
	return strings.TrimSpace(string(r[:chatTitleMax-3])) + "..."
}
