package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// CreateUser inserts a new account. Username and email are globally unique;
// conflicts map to ErrUsernameTaken / ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, username, email, saltHex, passwordHash string) (*User, error) {
	query := `
		INSERT INTO users (username, email, salt, password_hash)
		VALUES (?, ?, ?, ?)
	`
	res, err := s.db.ExecContext(ctx, query, username, email, saltHex, passwordHash)
	if err != nil {
		if conflictErr := uniqueConflict(err); conflictErr != nil {
			return nil, conflictErr
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted user id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByUsername fetches a user by their unique username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUser(ctx, "username = ?", username)
}

// GetUserByID fetches a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*User, error) {
	query := `
		SELECT id, username, nickname, email, password_hash, salt, created_at
		FROM users
		WHERE ` + where

	var u User
	var nickname sql.NullString
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&nickname,
		&u.Email,
		&u.PasswordHash,
		&u.Salt,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if nickname.Valid {
		u.Nickname = nickname.String
	}

	return &u, nil
}

// uniqueConflict maps a SQLite unique-constraint violation onto the
// column-specific sentinel, or returns nil for unrelated errors.
func uniqueConflict(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return nil
	}
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return ErrEmailTaken
	case strings.Contains(msg, "user_contacts"):
		return ErrContactExists
	}
	return nil
}
