package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"probel/internal/model"
)

const chatColumns = `id, user_id, title, created_at_unixms, last_updated_unixms`

func scanChat(r rowScanner) (model.Chat, error) {
	var (
		c         model.Chat
		createdMs int64
		updatedMs int64
	)
	if err := r.Scan(&c.ID, &c.UserID, &c.Title, &createdMs, &updatedMs); err != nil {
		return model.Chat{}, err
	}
	c.CreatedAt = fromMs(createdMs)
	c.LastUpdated = fromMs(updatedMs)
	return c, nil
}

func (s *Store) ListChats(ctx context.Context, userID string) ([]model.Chat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+chatColumns+` FROM chats WHERE user_id = ?
		ORDER BY last_updated_unixms DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Chat{}
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetChat(ctx context.Context, userID, id string) (model.Chat, error) {
	c, err := scanChat(s.db.QueryRowContext(ctx, `SELECT `+chatColumns+` FROM chats WHERE user_id = ? AND id = ?`, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Chat{}, NotFoundError{Kind: "chat", ID: id}
	}
	return c, err
}

// CreateChat inserts a chat. An empty title becomes "New Chat".
func (s *Store) CreateChat(ctx context.Context, userID, title string) (model.Chat, error) {
	if strings.TrimSpace(title) == "" {
		title = model.DefaultChatTitle
	}
	now := s.nowMs()
	c := model.Chat{ID: newID(), UserID: userID, Title: title, CreatedAt: fromMs(now), LastUpdated: fromMs(now)}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO chats(`+chatColumns+`) VALUES(?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, now, now); err != nil {
		return model.Chat{}, err
	}
	return c, nil
}

func (s *Store) RenameChat(ctx context.Context, userID, id, title string) (model.Chat, error) {
	if strings.TrimSpace(title) == "" {
		title = model.DefaultChatTitle
	}
	now := s.nowMs()
	res, err := s.db.ExecContext(ctx, `UPDATE chats SET title = ?, last_updated_unixms = ? WHERE user_id = ? AND id = ?`,
		title, now, userID, id)
	if err != nil {
		return model.Chat{}, err
	}
	if err := rowsAffected(res, "chat", id); err != nil {
		return model.Chat{}, err
	}
	return s.GetChat(ctx, userID, id)
}

// DeleteChat removes the chat row. Its messages must already be deleted.
func (s *Store) DeleteChat(ctx context.Context, userID, id string) error {
	if _, err := s.GetChat(ctx, userID, id); err != nil {
		return err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM chat_messages WHERE chat_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("delete chat %s: %w", id, ErrChatHasMessages)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return rowsAffected(res, "chat", id)
}

// ListMessages returns a chat's messages oldest first.
func (s *Store) ListMessages(ctx context.Context, userID, chatID string) ([]model.ChatMessage, error) {
	if _, err := s.GetChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, chat_id, content, sender, content_blocks_json, created_at_unixms
		FROM chat_messages WHERE chat_id = ? ORDER BY created_at_unixms ASC, rowid ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ChatMessage{}
	for rows.Next() {
		var (
			m         model.ChatMessage
			blocks    sql.NullString
			createdMs int64
		)
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Content, &m.Sender, &blocks, &createdMs); err != nil {
			return nil, err
		}
		if blocks.Valid && blocks.String != "" {
			if err := json.Unmarshal([]byte(blocks.String), &m.ContentBlocks); err != nil {
				return nil, err
			}
		}
		m.CreatedAt = fromMs(createdMs)
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddMessage appends a message and touches the chat's last_updated.
func (s *Store) AddMessage(ctx context.Context, userID string, m model.ChatMessage) (model.ChatMessage, error) {
	if !m.Sender.Valid() {
		return model.ChatMessage{}, fmt.Errorf("%w: invalid sender %q", ErrInvalidInput, m.Sender)
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return model.ChatMessage{}, err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.nowMs()
	res, err := tx.ExecContext(ctx, `UPDATE chats SET last_updated_unixms = ? WHERE user_id = ? AND id = ?`, now, userID, m.ChatID)
	if err != nil {
		return model.ChatMessage{}, err
	}
	if err := rowsAffected(res, "chat", m.ChatID); err != nil {
		return model.ChatMessage{}, err
	}
	var blocks sql.NullString
	if len(m.ContentBlocks) > 0 {
		b, err := json.Marshal(m.ContentBlocks)
		if err != nil {
			return model.ChatMessage{}, err
		}
		blocks = sql.NullString{String: string(b), Valid: true}
	}
	m.ID = newID()
	m.CreatedAt = fromMs(now)
	if _, err := tx.ExecContext(ctx, `INSERT INTO chat_messages(id, chat_id, content, sender, content_blocks_json, created_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?)`, m.ID, m.ChatID, m.Content, string(m.Sender), blocks, now); err != nil {
		return model.ChatMessage{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.ChatMessage{}, err
	}
	return m, nil
}

// DeleteMessages removes every message of a chat owned by the user.
func (s *Store) DeleteMessages(ctx context.Context, userID, chatID string) (int64, error) {
	if _, err := s.GetChat(ctx, userID, chatID); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE chat_id = ?`, chatID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
