package model

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is a signed-in user and the bearer token that identifies them.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Note struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// NotePatch is a partial note update; nil fields are left untouched.
type NotePatch struct {
	Title      *string   `json:"title,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	IsArchived *bool     `json:"is_archived,omitempty"`
}

type NodePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type NodeData struct {
	Label string `json:"label"`
}

// Node is one flowchart node. Type is "input", "default" or "output".
type Node struct {
	ID       string       `json:"id"`
	Type     string       `json:"type,omitempty"`
	Data     NodeData     `json:"data"`
	Position NodePosition `json:"position"`
}

type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

type Flowchart struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Nodes       []Node    `json:"nodes"`
	Edges       []Edge    `json:"edges"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

type FlowchartPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Nodes       *[]Node `json:"nodes,omitempty"`
	Edges       *[]Edge `json:"edges,omitempty"`
}

// StartNode is the node a fresh flowchart begins with.
func StartNode() Node {
	return Node{
		ID:       "1",
		Type:     "input",
		Data:     NodeData{Label: "Start"},
		Position: NodePosition{X: 250, Y: 25},
	}
}

type Chat struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

func (s Sender) Valid() bool { return s == SenderUser || s == SenderAI }

// Role maps a sender onto the AI conversation role.
func (s Sender) Role() string {
	if s == SenderAI {
		return "assistant"
	}
	return "user"
}

type ChatMessage struct {
	ID      string `json:"id"`
	ChatID  string `json:"chat_id"`
	Content string `json:"content"`
	Sender  Sender `json:"sender"`
	// ContentBlocks keeps the raw AI content blocks when the reply had any.
	ContentBlocks []ContentBlock `json:"content_blocks,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

const (
	DefaultChatTitle = "New Chat"
	UntitledTitle    = "Untitled"
	AIErrorReply     = "Sorry, I encountered an error. Please try again."
)
