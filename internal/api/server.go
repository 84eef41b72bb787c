package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/CAFxX/httpcompression"
	"go.uber.org/zap"

	"probel/internal/aiwire"
	"probel/internal/logging"
	"probel/internal/model"
	"probel/internal/store"
)

const maxBodyBytes = 4 << 20

type ServerConfig struct {
	// AnonKey must be sent by clients in the "apikey" header.
	AnonKey string
	// AnthropicKey is the server-held key used by the AI proxy.
	AnthropicKey string
	// UpstreamURL overrides the AI provider endpoint (tests).
	UpstreamURL string
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

type Server struct {
	cfg    ServerConfig
	st     *store.Store
	log    *zap.Logger
	client *http.Client
}

func NewServer(st *store.Store, cfg ServerConfig) (*Server, error) {
	cfg.AnonKey = strings.TrimSpace(cfg.AnonKey)
	cfg.AnthropicKey = strings.TrimSpace(cfg.AnthropicKey)
	cfg.UpstreamURL = strings.TrimSpace(cfg.UpstreamURL)
	if st == nil {
		return nil, errors.New("api: store is nil")
	}
	if cfg.AnonKey == "" {
		return nil, errors.New("api: anon key is empty")
	}
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = aiwire.MessagesURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Server{cfg: cfg, st: st, log: logging.OrNop(cfg.Logger), client: client}, nil
}

// Handler returns the full route table wrapped in request logging and
// response compression.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("POST /auth/v1/signup", s.requireAnonKey(http.HandlerFunc(s.handleSignUp)))
	mux.Handle("POST /auth/v1/token", s.requireAnonKey(http.HandlerFunc(s.handleToken)))
	mux.Handle("GET /auth/v1/user", s.requireUser(s.handleUser))
	mux.Handle("POST /auth/v1/logout", s.requireUser(s.handleLogout))

	mux.Handle("GET /rest/v1/notes", s.requireUser(s.handleNotesList))
	mux.Handle("POST /rest/v1/notes", s.requireUser(s.handleNotesCreate))
	mux.Handle("GET /rest/v1/notes/{id}", s.requireUser(s.handleNoteGet))
	mux.Handle("PATCH /rest/v1/notes/{id}", s.requireUser(s.handleNoteUpdate))
	mux.Handle("DELETE /rest/v1/notes/{id}", s.requireUser(s.handleNoteDelete))

	mux.Handle("GET /rest/v1/flowcharts", s.requireUser(s.handleFlowchartsList))
	mux.Handle("POST /rest/v1/flowcharts", s.requireUser(s.handleFlowchartsCreate))
	mux.Handle("GET /rest/v1/flowcharts/{id}", s.requireUser(s.handleFlowchartGet))
	mux.Handle("PATCH /rest/v1/flowcharts/{id}", s.requireUser(s.handleFlowchartUpdate))
	mux.Handle("DELETE /rest/v1/flowcharts/{id}", s.requireUser(s.handleFlowchartDelete))

	mux.Handle("GET /rest/v1/chats", s.requireUser(s.handleChatsList))
	mux.Handle("POST /rest/v1/chats", s.requireUser(s.handleChatsCreate))
	mux.Handle("GET /rest/v1/chats/{id}", s.requireUser(s.handleChatGet))
	mux.Handle("PATCH /rest/v1/chats/{id}", s.requireUser(s.handleChatUpdate))
	mux.Handle("DELETE /rest/v1/chats/{id}", s.requireUser(s.handleChatDelete))
	mux.Handle("GET /rest/v1/chats/{id}/messages", s.requireUser(s.handleMessagesList))
	mux.Handle("POST /rest/v1/chats/{id}/messages", s.requireUser(s.handleMessagesCreate))
	mux.Handle("DELETE /rest/v1/chat_messages", s.requireUser(s.handleMessagesDelete))

	// Any method reaches the proxy so it can answer 405 itself.
	mux.HandleFunc("/api/ai", s.handleAI)

	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, err
	}
	return compress(s.logRequests(mux)), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}

type ctxKey int

const userKey ctxKey = iota

func userFrom(ctx context.Context) model.User {
	u, _ := ctx.Value(userKey).(model.User)
	return u
}

func (s *Server) anonKeyOK(r *http.Request) bool {
	got := strings.TrimSpace(r.Header.Get("apikey"))
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.AnonKey)) == 1
}

func (s *Server) requireAnonKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.anonKeyOK(r) {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// requireUser checks the api key and resolves the bearer session.
func (s *Server) requireUser(h http.HandlerFunc) http.Handler {
	return s.requireAnonKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := s.st.SessionUser(r.Context(), bearerToken(r))
		if err != nil {
			if errors.Is(err, store.ErrInvalidSession) {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			s.fail(w, r, err)
			return
		}
		h(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	}))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, map[string]any{"data": v})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// fail maps store errors to HTTP statuses. Unknown errors are logged and
// reported as 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var nf store.NotFoundError
	switch {
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrChatHasMessages), errors.Is(err, store.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidCredentials), errors.Is(err, store.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
