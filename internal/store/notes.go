package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"probel/internal/model"
)

const noteColumns = `id, user_id, title, content, tags_json, is_archived, created_at_unixms, last_updated_unixms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(r rowScanner) (model.Note, error) {
	var (
		n         model.Note
		tagsJSON  string
		archived  int
		createdMs int64
		updatedMs int64
	)
	if err := r.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &tagsJSON, &archived, &createdMs, &updatedMs); err != nil {
		return model.Note{}, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
		return model.Note{}, err
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	n.IsArchived = archived != 0
	n.CreatedAt = fromMs(createdMs)
	n.LastUpdated = fromMs(updatedMs)
	return n, nil
}

func titleOrUntitled(title string) string {
	if strings.TrimSpace(title) == "" {
		return model.UntitledTitle
	}
	return title
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

// ListNotes returns the user's notes, most recently updated first.
func (s *Store) ListNotes(ctx context.Context, userID string) ([]model.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE user_id = ?
		ORDER BY last_updated_unixms DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) GetNote(ctx context.Context, userID, id string) (model.Note, error) {
	n, err := scanNote(s.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND id = ?`, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Note{}, NotFoundError{Kind: "note", ID: id}
	}
	return n, err
}

// CreateNote inserts n for the user. An empty title becomes "Untitled".
func (s *Store) CreateNote(ctx context.Context, userID string, n model.Note) (model.Note, error) {
	now := s.nowMs()
	n.ID = newID()
	n.UserID = userID
	n.Title = titleOrUntitled(n.Title)
	if n.Tags == nil {
		n.Tags = []string{}
	}
	n.CreatedAt, n.LastUpdated = fromMs(now), fromMs(now)
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return model.Note{}, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO notes(`+noteColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Content, tags, boolInt(n.IsArchived), now, now); err != nil {
		return model.Note{}, err
	}
	return n, nil
}

// UpdateNote applies a partial update and bumps last_updated.
func (s *Store) UpdateNote(ctx context.Context, userID, id string, p model.NotePatch) (model.Note, error) {
	n, err := s.GetNote(ctx, userID, id)
	if err != nil {
		return model.Note{}, err
	}
	if p.Title != nil {
		n.Title = titleOrUntitled(*p.Title)
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Tags != nil {
		n.Tags = *p.Tags
	}
	if p.IsArchived != nil {
		n.IsArchived = *p.IsArchived
	}
	now := s.nowMs()
	n.LastUpdated = fromMs(now)
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return model.Note{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE notes SET title = ?, content = ?, tags_json = ?, is_archived = ?, last_updated_unixms = ?
		WHERE user_id = ? AND id = ?`, n.Title, n.Content, tags, boolInt(n.IsArchived), now, userID, id)
	if err != nil {
		return model.Note{}, err
	}
	if err := rowsAffected(res, "note", id); err != nil {
		return model.Note{}, err
	}
	return n, nil
}

func (s *Store) DeleteNote(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return rowsAffected(res, "note", id)
}
