package store

import (
	"context"
	"database/sql"
	"fmt"
)

// AddContact inserts a directed contact row from userID to contactID.
// The relation is directed: symmetric behavior needs a row each way.
func (s *Store) AddContact(ctx context.Context, userID, contactID int64, status ContactStatus) (*Contact, error) {
	if userID == contactID {
		return nil, ErrSelfContact
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	query := `
		INSERT INTO user_contacts (user_id, contact_id, status)
		VALUES (?, ?, ?)
	`
	res, err := s.db.ExecContext(ctx, query, userID, contactID, string(status))
	if err != nil {
		if conflictErr := uniqueConflict(err); conflictErr != nil {
			return nil, conflictErr
		}
		return nil, fmt.Errorf("failed to insert contact: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted contact id: %w", err)
	}

	var c Contact
	var customNickname sql.NullString
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, contact_id, custom_nickname, status, created_at, updated_at
		FROM user_contacts
		WHERE id = ?`, id)
	if err := row.Scan(&c.ID, &c.UserID, &c.ContactID, &customNickname, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to read back contact: %w", err)
	}
	if customNickname.Valid {
		c.CustomNickname = customNickname.String
	}

	return &c, nil
}

// ListContacts returns the outgoing contacts of userID joined with the
// target user's username. All statuses are returned; filtering is the
// caller's choice.
func (s *Store) ListContacts(ctx context.Context, userID int64) ([]ContactRow, error) {
	query := `
		SELECT uc.contact_id, u.username, uc.custom_nickname, uc.status
		FROM user_contacts uc
		JOIN users u ON uc.contact_id = u.id
		WHERE uc.user_id = ?
		ORDER BY uc.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contacts []ContactRow
	for rows.Next() {
		var c ContactRow
		var customNickname sql.NullString
		if err := rows.Scan(&c.ContactID, &c.Username, &customNickname, &c.Status); err != nil {
			return nil, fmt.Errorf("failed to scan contact row: %w", err)
		}
		if customNickname.Valid {
			c.CustomNickname = customNickname.String
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact rows: %w", err)
	}

	return contacts, nil
}
