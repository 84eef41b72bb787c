package tui

import (
	"context"
	"time"

	"go.uber.org/zap"

	"probel/internal/model"
	"probel/internal/service"
)

// requestTimeout bounds every backend call a page makes.
const requestTimeout = 90 * time.Second

type NotesService interface {
	List(ctx context.Context) ([]model.Note, error)
	Create(ctx context.Context, in model.Note) (model.Note, error)
	Update(ctx context.Context, id string, p model.NotePatch) (model.Note, error)
	Delete(ctx context.Context, id string) error
}

type FlowchartsService interface {
	List(ctx context.Context) ([]model.Flowchart, error)
	Create(ctx context.Context, in model.Flowchart) (model.Flowchart, error)
	Update(ctx context.Context, id string, p model.FlowchartPatch) (model.Flowchart, error)
	Delete(ctx context.Context, id string) error
}

type ChatsService interface {
	List(ctx context.Context) ([]model.Chat, error)
	Create(ctx context.Context, title string) (model.Chat, error)
	Delete(ctx context.Context, id string) error
	Messages(ctx context.Context, chatID string) ([]model.ChatMessage, error)
}

type ChatSender interface {
	Send(ctx context.Context, chatID string, history []model.ChatMessage, text string) (service.SendResult, error)
}

// Services are the backend operations the tool pages use.
type Services struct {
	Notes      NotesService
	Flowcharts FlowchartsService
	Chats      ChatsService
	ChatFlow   ChatSender
}

// NewServices wires the service layer behind a client.
func NewServices(c *service.Client, ai service.Completer, log *zap.Logger) Services {
	chats := service.NewChats(c)
	return Services{
		Notes:      service.NewNotes(c),
		Flowcharts: service.NewFlowcharts(c),
		Chats:      chats,
		ChatFlow:   service.NewChatFlow(chats, ai, log),
	}
}

func callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
