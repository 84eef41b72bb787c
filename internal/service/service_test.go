package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/goleak"

	"probel/internal/api"
	"probel/internal/model"
	"probel/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testAnonKey = "anon-test-key"

type env struct {
	backend *httptest.Server
	client  *Client
}

// newEnv starts a backend over a temp store. upstream, when non-nil, stands
// in for the AI provider behind /api/ai.
func newEnv(t *testing.T, upstream *httptest.Server) *env {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "svc.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	cfg := api.ServerConfig{AnonKey: testAnonKey, AnthropicKey: "sk-server"}
	if upstream != nil {
		cfg.UpstreamURL = upstream.URL
		cfg.HTTPClient = upstream.Client()
	}
	s, err := api.NewServer(st, cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	h, err := s.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	backend := httptest.NewServer(h)
	t.Cleanup(func() {
		backend.Close()
		_ = st.Close()
	})
	c, err := NewClient(Options{BaseURL: backend.URL, AnonKey: testAnonKey, HTTPClient: backend.Client()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return &env{backend: backend, client: c}
}

func (e *env) signUp(t *testing.T, email string) {
	t.Helper()
	if _, err := NewAuth(e.client).SignUp(context.Background(), email, "secret123"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
}

func TestNewClient_RequiresURLAndKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		opts Options
	}{
		{"no url", Options{AnonKey: "k"}},
		{"blank url", Options{BaseURL: "   ", AnonKey: "k"}},
		{"no key", Options{BaseURL: "http://127.0.0.1:1"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewClient(tc.opts); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	c, err := NewClient(Options{BaseURL: "http://127.0.0.1:1/", AnonKey: "k"})
	if err != nil {
		t.Fatalf("valid options: %v", err)
	}
	if got := c.BaseURL(); got != "http://127.0.0.1:1" {
		t.Fatalf("BaseURL: got %q", got)
	}
}

func TestAuth_SignInOutAndCurrentUser(t *testing.T) {
	t.Parallel()
	e := newEnv(t, nil)
	ctx := context.Background()
	auth := NewAuth(e.client)

	if _, err := auth.CurrentUser(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("CurrentUser signed out: got %v want ErrNotAuthenticated", err)
	}
	e.signUp(t, "ada@example.com")
	if err := auth.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if e.client.Session() != nil {
		t.Fatalf("session kept after sign out")
	}

	_, err := auth.SignIn(ctx, "ada@example.com", "wrong")
	var ue UpstreamError
	if !errors.As(err, &ue) || ue.Status != http.StatusBadRequest {
		t.Fatalf("bad password: got %v", err)
	}
	if _, err := auth.SignIn(ctx, "ada@example.com", "secret123"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	u, err := auth.CurrentUser(ctx)
	if err != nil || u.Email != "ada@example.com" {
		t.Fatalf("CurrentUser: %+v %v", u, err)
	}
}

func TestAuth_StaleTokenIsNotAuthenticated(t *testing.T) {
	t.Parallel()
	e := newEnv(t, nil)
	e.client.SetSession(&model.Session{AccessToken: "stale"})

	_, err := NewNotes(e.client).List(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("got %v want ErrNotAuthenticated", err)
	}
}

func TestNotes_UntitledAndOrdering(t *testing.T) {
	t.Parallel()
	e := newEnv(t, nil)
	e.signUp(t, "a@example.com")
	ctx := context.Background()
	notes := NewNotes(e.client)

	first, err := notes.Create(ctx, model.Note{Content: "body"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Title != model.UntitledTitle {
		t.Fatalf("title: got %q want %q", first.Title, model.UntitledTitle)
	}
	if _, err := notes.Create(ctx, model.Note{Title: "second"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	title := "first again"
	if _, err := notes.Update(ctx, first.ID, model.NotePatch{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := notes.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, n := range list {
		got = append(got, n.Title)
	}
	if fmt.Sprint(got) != "[first again second]" {
		t.Fatalf("order: got %v", got)
	}

	if err := notes.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = notes.Get(ctx, first.ID)
	var ue UpstreamError
	if !errors.As(err, &ue) || ue.Status != http.StatusNotFound {
		t.Fatalf("get deleted: got %v", err)
	}
}

func TestFlowcharts_CreateStartsWithStartNode(t *testing.T) {
	t.Parallel()
	e := newEnv(t, nil)
	e.signUp(t, "a@example.com")
	ctx := context.Background()
	fc := NewFlowcharts(e.client)

	f, err := fc.Create(ctx, model.Flowchart{Title: "Plan"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(f.Nodes) != 1 || f.Nodes[0] != model.StartNode() {
		t.Fatalf("nodes: %+v", f.Nodes)
	}
	if f.Edges == nil || len(f.Edges) != 0 {
		t.Fatalf("edges: %+v", f.Edges)
	}

	nodes := append(f.Nodes, model.Node{ID: "2", Type: "default", Data: model.NodeData{Label: "Do"}, Position: model.NodePosition{X: 250, Y: 125}})
	edges := []model.Edge{{ID: "e1-2", Source: "1", Target: "2"}}
	got, err := fc.Update(ctx, f.ID, model.FlowchartPatch{Nodes: &nodes, Edges: &edges})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(got.Nodes) != 2 || len(got.Edges) != 1 || got.Title != "Plan" {
		t.Fatalf("updated: %+v", got)
	}
}

func TestChats_DeleteRemovesMessagesFirst(t *testing.T) {
	t.Parallel()
	e := newEnv(t, nil)
	e.signUp(t, "a@example.com")
	ctx := context.Background()
	chats := NewChats(e.client)

	c, err := chats.Create(ctx, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Title != model.DefaultChatTitle {
		t.Fatalf("title: got %q", c.Title)
	}
	for _, s := range []model.Sender{model.SenderUser, model.SenderAI} {
		if _, err := chats.AddMessage(ctx, model.ChatMessage{ChatID: c.ID, Content: "x", Sender: s}); err != nil {
			t.Fatalf("add message: %v", err)
		}
	}
	if err := chats.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err := chats.List(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("chats after delete: %+v %v", list, err)
	}
	_, err = chats.Messages(ctx, c.ID)
	var ue UpstreamError
	if !errors.As(err, &ue) || ue.Status != http.StatusNotFound {
		t.Fatalf("messages of deleted chat: got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not authenticated", ErrNotAuthenticated, "You are not signed in. Run `probel auth login` first."},
		{"401", UpstreamError{Status: 401, Message: "invalid session"}, "You are not signed in. Run `probel auth login` first."},
		{"missing ai key", fmt.Errorf("send: %w", ErrMissingAIKey), "AI is not configured. Set ANTHROPIC_API_KEY."},
		{"transport", TransportError{Op: "GET /x", Err: errors.New("refused")}, "Could not reach the server. Check your connection."},
		{"404", UpstreamError{Status: 404}, "Not found. It may have been deleted."},
		{"500 with message", UpstreamError{Status: 500, Message: "boom"}, "Request failed (500): boom"},
		{"429 bare", UpstreamError{Status: 429}, "Request failed (429)."},
		{"malformed", MalformedResponseError{Detail: "x"}, "Unexpected response from the server."},
		{"cancelled", context.Canceled, "The request was cancelled or timed out."},
		{"other", errors.New("disk full"), "Something went wrong: disk full"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := UserMessage(tc.err); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`{"error":"API Error: slow down"}`:                       "API Error: slow down",
		`{"error":{"type":"overloaded","message":"overloaded"}}`: "overloaded",
		"  plain text\n":                                         "plain text",
	}
	for in, want := range cases {
		if got := errorMessage([]byte(in)); got != want {
			t.Fatalf("errorMessage(%q): got %q want %q", in, got, want)
		}
	}
}
