package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"probel/internal/logging"
	"probel/internal/model"
)

type Options struct {
	BaseURL    string
	AnonKey    string
	Session    *model.Session
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	log     *zap.Logger

	mu      sync.RWMutex
	session *model.Session
}

// NewClient fails when the backend URL or anon key is missing.
func NewClient(o Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend URL is not configured (set PROBEL_BACKEND_URL)")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(o.AnonKey)
	if key == "" {
		return nil, errors.New("backend anon key is not configured (set PROBEL_ANON_KEY)")
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{baseURL: base, anonKey: key, http: hc, log: logging.OrNop(o.Logger), session: o.Session}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Session() *model.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) SetSession(s *model.Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

func (c *Client) token() string {
	if s := c.Session(); s != nil {
		return s.AccessToken
	}
	return ""
}

// newRequest builds a request carrying the api key and, when signed in, the
// bearer token.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// send performs the request and returns the raw body of a 2xx response.
func (c *Client) send(req *http.Request) ([]byte, error) {
	op := req.Method + " " + req.URL.Path
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Warn("backend request failed", zap.String("op", op), zap.Error(err))
		return nil, TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("backend returned error", zap.String("op", op), zap.Int("status", resp.StatusCode))
		return nil, UpstreamError{Status: resp.StatusCode, Message: errorMessage(b)}
	}
	return b, nil
}

// do runs an authenticated call and decodes the {"data": …} envelope into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.token() == "" {
		return ErrNotAuthenticated
	}
	return c.doAnon(ctx, method, path, query, body, out)
}

func (c *Client) doAnon(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	b, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return MalformedResponseError{Detail: method + " " + path, Err: err}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return MalformedResponseError{Detail: method + " " + path + ": missing data"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return MalformedResponseError{Detail: method + " " + path, Err: err}
	}
	return nil
}
