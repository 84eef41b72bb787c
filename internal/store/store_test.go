package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"probel/internal/model"
)

// fakeClock advances one millisecond per call so ordering by timestamp is deterministic.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "probel.sqlite"), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustUser(t *testing.T, s *Store, email string) model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), email, "secret123")
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func TestOpen_IsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "db.sqlite")
	for i := 0; i < 2; i++ {
		s, err := Open(context.Background(), path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		_ = s.Close()
	}
}

func TestUsers_SignUpAndAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	u, err := s.CreateUser(ctx, "  Ada@Example.com ", "secret123")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if _, err := s.CreateUser(ctx, "ada@example.com", "other123"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate signup: got %v want ErrEmailTaken", err)
	}
	if _, err := s.Authenticate(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password: got %v want ErrInvalidCredentials", err)
	}
	if _, err := s.Authenticate(ctx, "nobody@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v want ErrInvalidCredentials", err)
	}
	got, err := s.Authenticate(ctx, "ADA@example.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("authenticated user: got %q want %q", got.ID, u.ID)
	}
}

func TestSessions_ResolveAndRevoke(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	u := mustUser(t, s, "a@example.com")

	sess, err := s.CreateSession(ctx, u)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	got, err := s.SessionUser(ctx, sess.AccessToken)
	if err != nil || got.ID != u.ID {
		t.Fatalf("session user: got %+v, %v", got, err)
	}
	if err := s.DeleteSession(ctx, sess.AccessToken); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := s.SessionUser(ctx, sess.AccessToken); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("revoked session: got %v want ErrInvalidSession", err)
	}
}

func TestSessions_Expire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := Open(ctx, filepath.Join(t.TempDir(), "db.sqlite"), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	u := mustUser(t, s, "a@example.com")
	sess, err := s.CreateSession(ctx, u)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	now = now.Add(SessionTTL)
	if _, err := s.SessionUser(ctx, sess.AccessToken); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expired session: got %v want ErrInvalidSession", err)
	}
}
