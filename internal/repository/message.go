// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/anonbox/internal/models"
)

// AppendMessage adds a message to the account's mailbox if, at the moment of
// the insert, the account exists and accepts messages. Returns ErrNotFound
// when nothing was inserted.
func (r *Repository) AppendMessage(ctx context.Context, accountID int64, content string, createdAt time.Time) (*models.Message, error) {
	createdAt = createdAt.UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (account_id, content, created_at)
		SELECT id, ?, ? FROM accounts WHERE id = ? AND accepting_messages = 1`,
		content, createdAt, accountID)
	if err != nil {
		return nil, wrapError(err)
	}
	if err := expectRows(res); err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.Message{
		ID:        id,
		AccountID: accountID,
		Content:   content,
		CreatedAt: createdAt,
	}, nil
}

// ListMessages returns the account's mailbox, newest first.
func (r *Repository) ListMessages(ctx context.Context, accountID int64) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.db.SelectContext(ctx, &messages,
		`SELECT id, account_id, content, created_at FROM messages
		WHERE account_id = ? ORDER BY created_at DESC, id DESC`, accountID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// CountMessages returns the number of messages in the account's mailbox.
func (r *Repository) CountMessages(ctx context.Context, accountID int64) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM messages WHERE account_id = ?`, accountID); err != nil {
		return 0, err
	}
	return count, nil
}
