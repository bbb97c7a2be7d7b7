package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreatePrivateMessage persists a private message with is_delivered=false.
// The delivery engine flips the flag after a successful real-time send.
func (s *Store) CreatePrivateMessage(ctx context.Context, senderID, receiverID int64, content string) (*Message, error) {
	query := `
		INSERT INTO messages (content, sender_id, receiver_id, is_group)
		VALUES (?, ?, ?, 0)
	`
	res, err := s.db.ExecContext(ctx, query, content, senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert private message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted message id: %w", err)
	}
	return s.GetMessage(ctx, id)
}

// CreateGroupMessage persists a group message. Group messages carry no
// per-recipient delivery tracking.
func (s *Store) CreateGroupMessage(ctx context.Context, senderID, groupID int64, content string) (*Message, error) {
	query := `
		INSERT INTO messages (content, sender_id, group_id, is_group)
		VALUES (?, ?, ?, 1)
	`
	res, err := s.db.ExecContext(ctx, query, content, senderID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert group message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted message id: %w", err)
	}
	return s.GetMessage(ctx, id)
}

// GetMessage fetches a message by primary key.
func (s *Store) GetMessage(ctx context.Context, id int64) (*Message, error) {
	query := `
		SELECT id, content, is_group, sender_id, receiver_id, group_id,
		       is_delivered, delivered_at, created_at
		FROM messages
		WHERE id = ?
	`
	var m Message
	var receiverID, groupID sql.NullInt64
	var deliveredAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.Content,
		&m.IsGroup,
		&m.SenderID,
		&receiverID,
		&groupID,
		&m.IsDelivered,
		&deliveredAt,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to query message: %w", err)
	}
	if receiverID.Valid {
		m.ReceiverID = receiverID.Int64
	}
	if groupID.Valid {
		m.GroupID = groupID.Int64
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		m.DeliveredAt = &t
	}

	return &m, nil
}

// MarkDelivered records a successful real-time delivery.
func (s *Store) MarkDelivered(ctx context.Context, messageID int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET is_delivered = 1, delivered_at = ? WHERE id = ?`,
		at.UTC(), messageID)
	if err != nil {
		return fmt.Errorf("failed to mark message delivered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrMessageNotFound
	}
	return nil
}
