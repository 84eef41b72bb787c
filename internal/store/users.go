package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"probel/internal/model"
)

// SessionTTL is how long an access token stays valid.
const SessionTTL = 7 * 24 * time.Hour

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers a new account with a bcrypt password hash.
func (s *Store) CreateUser(ctx context.Context, email, password string) (model.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return model.User{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < 6 {
		return model.User{}, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&exists); err != nil {
		return model.User{}, err
	}
	if exists > 0 {
		return model.User{}, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{ID: newID(), Email: email, CreatedAt: fromMs(s.nowMs())}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO users(id, email, password_hash, created_at_unixms) VALUES(?, ?, ?, ?)`,
		u.ID, u.Email, string(hash), u.CreatedAt.UnixMilli()); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Authenticate checks an email/password pair.
func (s *Store) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	var (
		u    model.User
		hash string
		ms   int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, email, password_hash, created_at_unixms FROM users WHERE email = ?`,
		normalizeEmail(email)).Scan(&u.ID, &u.Email, &hash, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return model.User{}, ErrInvalidCredentials
	}
	u.CreatedAt = fromMs(ms)
	return u, nil
}

// CreateSession issues a new access token for u.
func (s *Store) CreateSession(ctx context.Context, u model.User) (model.Session, error) {
	sess := model.Session{
		AccessToken: newID(),
		TokenType:   "bearer",
		ExpiresAt:   fromMs(s.nowMs()).Add(SessionTTL),
		User:        u,
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO sessions(token, user_id, expires_at_unixms) VALUES(?, ?, ?)`,
		sess.AccessToken, u.ID, sess.ExpiresAt.UnixMilli()); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

// SessionUser resolves a bearer token to its user. Expired tokens are removed.
func (s *Store) SessionUser(ctx context.Context, token string) (model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.User{}, ErrInvalidSession
	}
	var (
		u         model.User
		createdMs int64
		expiresMs int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.created_at_unixms, s.expires_at_unixms
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = ?`, token).Scan(&u.ID, &u.Email, &createdMs, &expiresMs)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrInvalidSession
	}
	if err != nil {
		return model.User{}, err
	}
	if s.nowMs() >= expiresMs {
		_ = s.DeleteSession(ctx, token)
		return model.User{}, ErrInvalidSession
	}
	u.CreatedAt = fromMs(createdMs)
	return u, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}
