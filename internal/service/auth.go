package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"probel/internal/model"
)

type Auth struct{ c *Client }

func NewAuth(c *Client) *Auth { return &Auth{c: c} }

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp creates an account and signs it in.
func (a *Auth) SignUp(ctx context.Context, email, password string) (model.Session, error) {
	var s model.Session
	if err := a.c.doAnon(ctx, http.MethodPost, "/auth/v1/signup", nil, credentials{Email: strings.TrimSpace(email), Password: password}, &s); err != nil {
		return model.Session{}, err
	}
	a.c.SetSession(&s)
	return s, nil
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (model.Session, error) {
	q := url.Values{"grant_type": {"password"}}
	var s model.Session
	if err := a.c.doAnon(ctx, http.MethodPost, "/auth/v1/token", q, credentials{Email: strings.TrimSpace(email), Password: password}, &s); err != nil {
		return model.Session{}, err
	}
	a.c.SetSession(&s)
	return s, nil
}

// SignOut revokes the session server side and forgets it locally. The local
// session is dropped even when the server call fails.
func (a *Auth) SignOut(ctx context.Context) error {
	if a.c.token() == "" {
		return nil
	}
	err := a.c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, nil)
	a.c.SetSession(nil)
	if errors.Is(err, ErrNotAuthenticated) {
		return nil
	}
	return err
}

func (a *Auth) CurrentUser(ctx context.Context) (model.User, error) {
	var u model.User
	err := a.c.do(ctx, http.MethodGet, "/auth/v1/user", nil, nil, &u)
	return u, err
}
