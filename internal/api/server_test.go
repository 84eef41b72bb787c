package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"probel/internal/model"
	"probel/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testAnonKey = "anon-test-key"

type testEnv struct {
	srv   *httptest.Server
	store *store.Store
}

func newTestEnv(t *testing.T, upstreamURL string, upstreamClient *http.Client) *testEnv {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "api.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	s, err := NewServer(st, ServerConfig{
		AnonKey:      testAnonKey,
		AnthropicKey: "sk-test",
		UpstreamURL:  upstreamURL,
		HTTPClient:   upstreamClient,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	h, err := s.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		_ = st.Close()
	})
	return &testEnv{srv: srv, store: st}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("apikey", testAnonKey)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, out
}

func decodeData[T any](t *testing.T, b []byte) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("decode %s: %v", string(b), err)
	}
	return env.Data
}

func (e *testEnv) signUp(t *testing.T, email string) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/auth/v1/signup", "", map[string]string{"email": email, "password": "secret123"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: status %d body %s", resp.StatusCode, body)
	}
	return decodeData[model.Session](t, body).AccessToken
}

func TestAuth_RequiresAnonKeyAndSession(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "", nil)

	req, _ := http.NewRequest(http.MethodGet, e.srv.URL+"/rest/v1/notes", nil)
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing apikey: got %d want 401", resp.StatusCode)
	}

	resp, _ = e.do(t, http.MethodGet, "/rest/v1/notes", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing bearer: got %d want 401", resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodGet, "/rest/v1/notes", "bogus", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad bearer: got %d want 401", resp.StatusCode)
	}
}

func TestAuth_SignInUserLogout(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "", nil)
	e.signUp(t, "ada@example.com")

	resp, body := e.do(t, http.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]string{"email": "ada@example.com", "password": "nope"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad password: got %d body %s", resp.StatusCode, body)
	}
	resp, body = e.do(t, http.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]string{"email": "ada@example.com", "password": "secret123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign in: got %d body %s", resp.StatusCode, body)
	}
	token := decodeData[model.Session](t, body).AccessToken

	resp, body = e.do(t, http.MethodGet, "/auth/v1/user", token, nil)
	if resp.StatusCode != http.StatusOK || decodeData[model.User](t, body).Email != "ada@example.com" {
		t.Fatalf("user: got %d body %s", resp.StatusCode, body)
	}
	resp, _ = e.do(t, http.MethodPost, "/auth/v1/logout", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: got %d", resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodGet, "/auth/v1/user", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("user after logout: got %d want 401", resp.StatusCode)
	}
}

func TestRest_NotesCRUD(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "", nil)
	token := e.signUp(t, "a@example.com")

	resp, body := e.do(t, http.MethodPost, "/rest/v1/notes", token, map[string]any{"title": "", "content": "hello"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.StatusCode, body)
	}
	n := decodeData[model.Note](t, body)
	if n.Title != "Untitled" {
		t.Fatalf("title: got %q want Untitled", n.Title)
	}

	resp, body = e.do(t, http.MethodPatch, "/rest/v1/notes/"+n.ID, token, map[string]any{"title": "Renamed"})
	if resp.StatusCode != http.StatusOK || decodeData[model.Note](t, body).Content != "hello" {
		t.Fatalf("patch must keep untouched fields: %d %s", resp.StatusCode, body)
	}

	_, body = e.do(t, http.MethodGet, "/rest/v1/notes", token, nil)
	list := decodeData[[]model.Note](t, body)
	if len(list) != 1 || list[0].Title != "Renamed" {
		t.Fatalf("list: %+v", list)
	}

	other := e.signUp(t, "b@example.com")
	resp, _ = e.do(t, http.MethodGet, "/rest/v1/notes/"+n.ID, other, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("cross-user get: got %d want 404", resp.StatusCode)
	}

	resp, _ = e.do(t, http.MethodDelete, "/rest/v1/notes/"+n.ID, token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: got %d", resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodDelete, "/rest/v1/notes/"+n.ID, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: got %d want 404", resp.StatusCode)
	}
}

func TestRest_ChatDeleteNeedsMessagesGone(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "", nil)
	token := e.signUp(t, "a@example.com")

	_, body := e.do(t, http.MethodPost, "/rest/v1/chats", token, map[string]any{})
	c := decodeData[model.Chat](t, body)
	if c.Title != "New Chat" {
		t.Fatalf("default chat title: %q", c.Title)
	}
	resp, body := e.do(t, http.MethodPost, "/rest/v1/chats/"+c.ID+"/messages", token, map[string]any{"content": "hi", "sender": "user"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add message: %d %s", resp.StatusCode, body)
	}
	resp, _ = e.do(t, http.MethodPost, "/rest/v1/chats/"+c.ID+"/messages", token, map[string]any{"content": "hi", "sender": "bot"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad sender: got %d want 400", resp.StatusCode)
	}

	resp, _ = e.do(t, http.MethodDelete, "/rest/v1/chats/"+c.ID, token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("delete with messages: got %d want 409", resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodDelete, "/rest/v1/chat_messages?chat_id="+c.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete messages: got %d", resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodDelete, "/rest/v1/chats/"+c.ID, token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete chat: got %d", resp.StatusCode)
	}
}

func TestHandler_CompressesWhenAccepted(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "", nil)
	token := e.signUp(t, "a@example.com")
	for i := 0; i < 10; i++ {
		e.do(t, http.MethodPost, "/rest/v1/notes", token, map[string]any{"title": "note", "content": strings.Repeat("lorem ipsum ", 20)})
	}

	req, _ := http.NewRequest(http.MethodGet, e.srv.URL+"/rest/v1/notes", nil)
	req.Header.Set("apikey", testAnonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if got := resp.Header.Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding: got %q want gzip", got)
	}
}

func TestNewServer_RequiresAnonKey(t *testing.T) {
	t.Parallel()

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "x.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	if _, err := NewServer(st, ServerConfig{}); err == nil {
		t.Fatalf("expected error for empty anon key")
	}
}

func TestServer_AnonKeyOK(t *testing.T) {
	t.Parallel()
	s := &Server{cfg: ServerConfig{AnonKey: testAnonKey}}

	cases := []struct {
		name   string
		header string
		want   bool
	}{
		{"exact", testAnonKey, true},
		{"padded", "  " + testAnonKey + " ", true},
		{"missing", "", false},
		{"prefix", testAnonKey[:4], false},
		{"longer", testAnonKey + "x", false},
		{"same length", strings.Repeat("x", len(testAnonKey)), false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/rest/v1/notes", nil)
		if tc.header != "" {
			r.Header.Set("apikey", tc.header)
		}
		if got := s.anonKeyOK(r); got != tc.want {
			t.Fatalf("%s: anonKeyOK(%q) = %v want %v", tc.name, tc.header, got, tc.want)
		}
	}
}
