package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const groupColumns = `id, name, description, created_by, created_at, updated_at`

// CreateGroup persists a new group together with its membership rows.
func (q *queries) CreateGroup(ctx context.Context, group *models.Group) error {
	// Generate IDs if not set
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().UnixMilli()
	}
	if group.UpdatedAt == 0 {
		group.UpdatedAt = group.CreatedAt
	}
	group.Members = sortedMembers(append([]string{group.CreatedBy}, group.Members...))

	return q.atomic(ctx, func(q *queries) error {
		_, err := q.exec(ctx, `
			INSERT INTO groups (id, name, description, created_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, group.ID, group.Name, group.Description, group.CreatedBy, group.CreatedAt, group.UpdatedAt)
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		for _, member := range group.Members {
			if _, err := q.AddGroupMember(ctx, group.ID, member, group.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetGroup retrieves a group with its members.
func (q *queries) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return q.getGroup(ctx, groupID, "")
}

// LockGroup retrieves a group and, on PostgreSQL, holds its row until the
// enclosing transaction ends.
func (q *queries) LockGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return q.getGroup(ctx, groupID, q.dialect.lockSuffix)
}

func (q *queries) getGroup(ctx context.Context, groupID, suffix string) (*models.Group, error) {
	group := &models.Group{}
	err := q.get(ctx, group, `SELECT `+groupColumns+` FROM groups WHERE id = ?`+suffix, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := q.loadMembers(ctx, []string{group.ID})
	if err != nil {
		return nil, err
	}
	group.Members = members[group.ID]
	return group, nil
}

// UpdateGroup updates a group's name and description.
func (q *queries) UpdateGroup(ctx context.Context, group *models.Group) error {
	res, err := q.exec(ctx, `
		UPDATE groups SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, group.Name, group.Description, group.UpdatedAt, group.ID)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteGroup removes a group and everything recorded in it.
func (q *queries) DeleteGroup(ctx context.Context, groupID string) error {
	return q.atomic(ctx, func(q *queries) error {
		if _, err := q.exec(ctx, `
			DELETE FROM expense_shares
			WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = ?)
		`, groupID); err != nil {
			return fmt.Errorf("failed to delete group shares: %w", err)
		}
		if _, err := q.exec(ctx, `DELETE FROM expenses WHERE group_id = ?`, groupID); err != nil {
			return fmt.Errorf("failed to delete group expenses: %w", err)
		}
		if _, err := q.exec(ctx, `DELETE FROM group_members WHERE group_id = ?`, groupID); err != nil {
			return fmt.Errorf("failed to delete group members: %w", err)
		}

		res, err := q.exec(ctx, `DELETE FROM groups WHERE id = ?`, groupID)
		if err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

// ListVisibleGroups returns every group the user created or is a member of.
func (q *queries) ListVisibleGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	var groups []*models.Group
	err := q.sel(ctx, &groups, `
		SELECT `+groupColumns+`
		FROM groups
		WHERE created_by = ?
		   OR id IN (SELECT group_id FROM group_members WHERE user_id = ?)
		ORDER BY created_at DESC, id DESC
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	if len(groups) == 0 {
		return []*models.Group{}, nil
	}

	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	members, err := q.loadMembers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		g.Members = members[g.ID]
	}
	return groups, nil
}

// AddGroupMember inserts a membership row if it does not exist yet.
func (q *queries) AddGroupMember(ctx context.Context, groupID, userID string, joinedAt int64) (bool, error) {
	res, err := q.exec(ctx, `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES (?, ?, ?)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, groupID, userID, joinedAt)
	if err != nil {
		return false, fmt.Errorf("failed to add group member: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveGroupMember deletes a membership row.
func (q *queries) RemoveGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	res, err := q.exec(ctx, `DELETE FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove group member: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsGroupMember checks if a user is a member of a group.
func (q *queries) IsGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	err := q.get(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?)
	`, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

type memberRow struct {
	GroupID string `db:"group_id"`
	UserID  string `db:"user_id"`
}

// loadMembers returns member IDs per group, each sorted ascending.
func (q *queries) loadMembers(ctx context.Context, groupIDs []string) (map[string][]string, error) {
	var rows []memberRow
	err := q.selIn(ctx, &rows, `
		SELECT group_id, user_id
		FROM group_members
		WHERE group_id IN (?)
		ORDER BY group_id, user_id
	`, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load group members: %w", err)
	}

	out := make(map[string][]string, len(groupIDs))
	for _, id := range groupIDs {
		out[id] = []string{}
	}
	for _, r := range rows {
		out[r.GroupID] = append(out[r.GroupID], r.UserID)
	}
	return out, nil
}
