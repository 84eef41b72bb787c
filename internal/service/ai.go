package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"probel/internal/aiwire"
	"probel/internal/model"
)

// Reply is the assistant's answer to one turn.
type Reply struct {
	Text   string
	Blocks []model.ContentBlock
}

// Completer answers a user turn given the prior conversation.
type Completer interface {
	Complete(ctx context.Context, history []model.ChatMessage, text string) (Reply, error)
}

type AIOptions struct {
	// Direct calls the provider from the client with APIKey instead of going
	// through the backend proxy.
	Direct bool
	APIKey string
	// URL overrides the provider endpoint in direct mode.
	URL string
}

type AI struct {
	c      *Client
	direct bool
	key    string
	url    string
}

func NewAI(c *Client, o AIOptions) *AI {
	u := o.URL
	if u == "" {
		u = aiwire.MessagesURL
	}
	return &AI{c: c, direct: o.Direct, key: strings.TrimSpace(o.APIKey), url: u}
}

func (a *AI) Direct() bool { return a.direct }

func (a *AI) Complete(ctx context.Context, history []model.ChatMessage, text string) (Reply, error) {
	body := aiwire.NewRequest(history, text)
	var (
		req *http.Request
		err error
	)
	if a.direct {
		req, err = a.directRequest(ctx, body)
	} else {
		req, err = a.c.newRequest(ctx, http.MethodPost, "/api/ai", nil, body)
	}
	if err != nil {
		return Reply{}, err
	}
	a.c.log.Debug("ai request", zap.Bool("direct", a.direct), zap.Int("messages", len(body.Messages)))
	raw, err := a.c.send(req)
	if err != nil {
		return Reply{}, err
	}
	return parseReply(raw)
}

func (a *AI) directRequest(ctx context.Context, body aiwire.Request) (*http.Request, error) {
	if a.key == "" {
		return nil, ErrMissingAIKey
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.key)
	req.Header.Set("anthropic-version", aiwire.Version)
	return req, nil
}

func parseReply(raw []byte) (Reply, error) {
	var resp aiwire.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Reply{}, MalformedResponseError{Detail: "ai reply", Err: err}
	}
	if resp.Error != nil {
		return Reply{}, MalformedResponseError{Detail: "ai reply carried an error: " + resp.Error.Message}
	}
	if resp.Content == nil {
		return Reply{}, MalformedResponseError{Detail: "ai reply has no content array"}
	}
	return Reply{Text: resp.Text(), Blocks: resp.Content}, nil
}
