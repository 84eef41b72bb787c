package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"probel/internal/model"
	"probel/internal/service"
)

func newChatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chats",
		Aliases: []string{"chat"},
		Short:   "AI chat sessions",
	}
	cmd.AddCommand(newChatsListCmd(app))
	cmd.AddCommand(newChatsCreateCmd(app))
	cmd.AddCommand(newChatsRenameCmd(app))
	cmd.AddCommand(newChatsDeleteCmd(app))
	cmd.AddCommand(newChatsMessagesCmd(app))
	cmd.AddCommand(newChatsSendCmd(app))
	return cmd
}

func chatsService(app *App) (*service.Chats, error) {
	c, err := app.client()
	if err != nil {
		return nil, err
	}
	return service.NewChats(c), nil
}

func newChatsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List chats, most recently active first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := chatsService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			cs, err := svc.List(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, cs)
		},
	}
}

func newChatsCreateCmd(app *App) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start an empty chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := chatsService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			c, err := svc.Create(ctx, strings.TrimSpace(title))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, c)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Chat title (default New Chat)")
	return cmd
}

func newChatsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <chat-id> <title>",
		Short: "Rename a chat",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[1])
			if title == "" {
				return writeErr(cmd, errors.New("rename: title is empty"))
			}
			svc, err := chatsService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			c, err := svc.Rename(ctx, args[0], title)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, c)
		},
	}
}

func newChatsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chat-id>",
		Short: "Delete a chat and all of its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := chatsService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			if err := svc.Delete(ctx, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{"id": args[0], "deleted": true})
		},
	}
}

func newChatsMessagesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "messages <chat-id>",
		Short: "Show a chat transcript, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := chatsService(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			ms, err := svc.Messages(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, ms)
		},
	}
}

func newChatsSendCmd(app *App) *cobra.Command {
	var chatID string
	cmd := &cobra.Command{
		Use:   "send <text>...",
		Short: "Send a message and wait for the AI reply",
		Long: strings.TrimSpace(`
Send one message. Without --chat a new chat is created and titled from the
message. Both the message and the reply are saved; when the AI call fails
the saved reply is an error notice and the command exits non-zero.
`),
		Example: strings.TrimSpace(`
probel chats send "What is a flowchart good for?"
probel chats send --chat 8c1e... "And a mind map?"
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return writeErr(cmd, errors.New("send: message is empty"))
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			chats := service.NewChats(c)
			flow := service.NewChatFlow(chats, app.ai(c), app.logger())

			ctx, cancel := callCtx(cmd)
			defer cancel()
			var history []model.ChatMessage
			if chatID != "" {
				if history, err = chats.Messages(ctx, chatID); err != nil {
					return writeErr(cmd, err)
				}
			}
			res, sendErr := flow.Send(ctx, chatID, history, text)
			out := map[string]any{"reply": res.Reply}
			if res.Chat != nil {
				out["chat"] = res.Chat
			}
			if res.User != nil {
				out["message"] = res.User
			}
			if res.Chat != nil || res.User != nil {
				_ = writeData(cmd, app, out)
			}
			if sendErr != nil {
				return writeErr(cmd, sendErr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&chatID, "chat", "", "Continue an existing chat")
	return cmd
}
