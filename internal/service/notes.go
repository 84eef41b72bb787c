package service

import (
	"context"
	"net/http"
	"net/url"

	"probel/internal/model"
)

type Notes struct{ c *Client }

func NewNotes(c *Client) *Notes { return &Notes{c: c} }

// List returns the signed-in user's notes, most recently updated first.
func (n *Notes) List(ctx context.Context) ([]model.Note, error) {
	var out []model.Note
	err := n.c.do(ctx, http.MethodGet, "/rest/v1/notes", nil, nil, &out)
	return out, err
}

func (n *Notes) Get(ctx context.Context, id string) (model.Note, error) {
	var out model.Note
	err := n.c.do(ctx, http.MethodGet, "/rest/v1/notes/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Create stores a note; an empty title is saved as "Untitled".
func (n *Notes) Create(ctx context.Context, in model.Note) (model.Note, error) {
	var out model.Note
	err := n.c.do(ctx, http.MethodPost, "/rest/v1/notes", nil, in, &out)
	return out, err
}

func (n *Notes) Update(ctx context.Context, id string, p model.NotePatch) (model.Note, error) {
	var out model.Note
	err := n.c.do(ctx, http.MethodPatch, "/rest/v1/notes/"+url.PathEscape(id), nil, p, &out)
	return out, err
}

func (n *Notes) Delete(ctx context.Context, id string) error {
	return n.c.do(ctx, http.MethodDelete, "/rest/v1/notes/"+url.PathEscape(id), nil, nil, nil)
}
