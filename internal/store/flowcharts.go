package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"probel/internal/model"
)

const flowchartColumns = `id, user_id, title, description, nodes_json, edges_json, created_at_unixms, last_updated_unixms`

func scanFlowchart(r rowScanner) (model.Flowchart, error) {
	var (
		f         model.Flowchart
		nodesJSON string
		edgesJSON string
		createdMs int64
		updatedMs int64
	)
	if err := r.Scan(&f.ID, &f.UserID, &f.Title, &f.Description, &nodesJSON, &edgesJSON, &createdMs, &updatedMs); err != nil {
		return model.Flowchart{}, err
	}
	if err := json.Unmarshal([]byte(nodesJSON), &f.Nodes); err != nil {
		return model.Flowchart{}, err
	}
	if err := json.Unmarshal([]byte(edgesJSON), &f.Edges); err != nil {
		return model.Flowchart{}, err
	}
	normalizeGraph(&f)
	f.CreatedAt = fromMs(createdMs)
	f.LastUpdated = fromMs(updatedMs)
	return f, nil
}

func normalizeGraph(f *model.Flowchart) {
	if f.Nodes == nil {
		f.Nodes = []model.Node{}
	}
	if f.Edges == nil {
		f.Edges = []model.Edge{}
	}
}

func encodeGraph(f model.Flowchart) (string, string, error) {
	nodes, err := json.Marshal(f.Nodes)
	if err != nil {
		return "", "", err
	}
	edges, err := json.Marshal(f.Edges)
	if err != nil {
		return "", "", err
	}
	return string(nodes), string(edges), nil
}

func (s *Store) ListFlowcharts(ctx context.Context, userID string) ([]model.Flowchart, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+flowchartColumns+` FROM flowcharts WHERE user_id = ?
		ORDER BY last_updated_unixms DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Flowchart{}
	for rows.Next() {
		f, err := scanFlowchart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) GetFlowchart(ctx context.Context, userID, id string) (model.Flowchart, error) {
	f, err := scanFlowchart(s.db.QueryRowContext(ctx, `SELECT `+flowchartColumns+` FROM flowcharts WHERE user_id = ? AND id = ?`, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Flowchart{}, NotFoundError{Kind: "flowchart", ID: id}
	}
	return f, err
}

// CreateFlowchart inserts f for the user. An empty title becomes "Untitled".
func (s *Store) CreateFlowchart(ctx context.Context, userID string, f model.Flowchart) (model.Flowchart, error) {
	now := s.nowMs()
	f.ID = newID()
	f.UserID = userID
	f.Title = titleOrUntitled(f.Title)
	normalizeGraph(&f)
	f.CreatedAt, f.LastUpdated = fromMs(now), fromMs(now)
	nodes, edges, err := encodeGraph(f)
	if err != nil {
		return model.Flowchart{}, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO flowcharts(`+flowchartColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.Title, f.Description, nodes, edges, now, now); err != nil {
		return model.Flowchart{}, err
	}
	return f, nil
}

func (s *Store) UpdateFlowchart(ctx context.Context, userID, id string, p model.FlowchartPatch) (model.Flowchart, error) {
	f, err := s.GetFlowchart(ctx, userID, id)
	if err != nil {
		return model.Flowchart{}, err
	}
	if p.Title != nil {
		f.Title = titleOrUntitled(*p.Title)
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Nodes != nil {
		f.Nodes = *p.Nodes
	}
	if p.Edges != nil {
		f.Edges = *p.Edges
	}
	normalizeGraph(&f)
	now := s.nowMs()
	f.LastUpdated = fromMs(now)
	nodes, edges, err := encodeGraph(f)
	if err != nil {
		return model.Flowchart{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE flowcharts SET title = ?, description = ?, nodes_json = ?, edges_json = ?, last_updated_unixms = ?
		WHERE user_id = ? AND id = ?`, f.Title, f.Description, nodes, edges, now, userID, id)
	if err != nil {
		return model.Flowchart{}, err
	}
	if err := rowsAffected(res, "flowchart", id); err != nil {
		return model.Flowchart{}, err
	}
	return f, nil
}

func (s *Store) DeleteFlowchart(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM flowcharts WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return rowsAffected(res, "flowchart", id)
}
