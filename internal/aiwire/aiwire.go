// Package aiwire holds the Anthropic Messages API shapes shared by the
// backend proxy and the client.
package aiwire

import (
	"strings"

	"probel/internal/model"
)

const (
	MessagesURL = "https://api.anthropic.com/v1/messages"
	Version     = "2023-06-01"

	DefaultModel       = "claude-3-haiku-20240307"
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.7
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Response struct {
	ID      string               `json:"id,omitempty"`
	Type    string               `json:"type,omitempty"`
	Role    string               `json:"role,omitempty"`
	Content []model.ContentBlock `json:"content"`
	Error   *APIError            `json:"error,omitempty"`
}

// Text joins the text blocks of a reply, one per line.
func (r Response) Text() string {
	parts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		if c.Type == "text" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// NewRequest builds the request for a conversation: the prior history
// followed by the new user turn.
func NewRequest(history []model.ChatMessage, text string) Request {
	msgs := make([]Message, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, Message{Role: m.Sender.Role(), Content: m.Content})
	}
	msgs = append(msgs, Message{Role: "user", Content: text})
	return Request{
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Messages:    msgs,
		Temperature: DefaultTemperature,
	}
}
