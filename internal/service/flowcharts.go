package service

import (
	"context"
	"net/http"
	"net/url"

	"probel/internal/model"
)

type Flowcharts struct{ c *Client }

func NewFlowcharts(c *Client) *Flowcharts { return &Flowcharts{c: c} }

func (f *Flowcharts) List(ctx context.Context) ([]model.Flowchart, error) {
	var out []model.Flowchart
	err := f.c.do(ctx, http.MethodGet, "/rest/v1/flowcharts", nil, nil, &out)
	return out, err
}

func (f *Flowcharts) Get(ctx context.Context, id string) (model.Flowchart, error) {
	var out model.Flowchart
	err := f.c.do(ctx, http.MethodGet, "/rest/v1/flowcharts/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Create stores a flowchart. A chart without nodes starts from the Start node.
func (f *Flowcharts) Create(ctx context.Context, in model.Flowchart) (model.Flowchart, error) {
	if len(in.Nodes) == 0 {
		in.Nodes = []model.Node{model.StartNode()}
	}
	if in.Edges == nil {
		in.Edges = []model.Edge{}
	}
	var out model.Flowchart
	err := f.c.do(ctx, http.MethodPost, "/rest/v1/flowcharts", nil, in, &out)
	return out, err
}

func (f *Flowcharts) Update(ctx context.Context, id string, p model.FlowchartPatch) (model.Flowchart, error) {
	var out model.Flowchart
	err := f.c.do(ctx, http.MethodPatch, "/rest/v1/flowcharts/"+url.PathEscape(id), nil, p, &out)
	return out, err
}

func (f *Flowcharts) Delete(ctx context.Context, id string) error {
	return f.c.do(ctx, http.MethodDelete, "/rest/v1/flowcharts/"+url.PathEscape(id), nil, nil, nil)
}
