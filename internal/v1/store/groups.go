package store

import (
	"context"
	"fmt"
)

// CreateGroup creates a group and its initial memberships in one transaction.
// The creator is always enrolled, whether or not it appears in memberIDs.
// On any failure nothing persists.
func (s *Store) CreateGroup(ctx context.Context, name string, creatorID int64, memberIDs []int64) (*Group, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO groups (name, creator_id) VALUES (?, ?)`, name, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert group: %w", err)
	}
	groupID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted group id: %w", err)
	}

	seen := map[int64]bool{creatorID: true}
	members := append([]int64{creatorID}, memberIDs...)
	for _, uid := range members {
		if uid != creatorID && seen[uid] {
			continue
		}
		seen[uid] = true
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id) VALUES (?, ?)`, groupID, uid); err != nil {
			return nil, fmt.Errorf("failed to insert group member %d: %w", uid, err)
		}
	}

	var g Group
	row := tx.QueryRowContext(ctx, `SELECT id, name, creator_id, created_at FROM groups WHERE id = ?`, groupID)
	if err := row.Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to read back group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group creation: %w", err)
	}

	return &g, nil
}

// ListGroupsForUser returns the groups the user is a member of.
func (s *Store) ListGroupsForUser(ctx context.Context, userID int64) ([]Group, error) {
	query := `
		SELECT g.id, g.name, g.creator_id, g.created_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ?
		ORDER BY g.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}

	return groups, nil
}

// ListGroupMemberIDs returns the user IDs enrolled in the group.
func (s *Store) ListGroupMemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM group_members WHERE group_id = ? ORDER BY user_id ASC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}

	return ids, nil
}

// IsGroupMember reports whether userID belongs to groupID.
func (s *Store) IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query membership: %w", err)
	}
	return count > 0, nil
}
