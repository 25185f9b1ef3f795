package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/divvyup/divvy/internal/models"
	"github.com/divvyup/divvy/internal/storage"
)

// CreateGroup persists a new group to the database.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	var emoji interface{}
	if group.Emoji != "" {
		emoji = group.Emoji
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO groups (id, name, password_hash, emoji, created_at) VALUES (?, ?, ?, ?, ?)",
		group.ID, group.Name, group.PasswordHash, emoji, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.getGroup(ctx, "id", groupID)
}

// GetGroupByName retrieves a group by its display name.
func (s *SQLiteStore) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	return s.getGroup(ctx, "name", name)
}

func (s *SQLiteStore) getGroup(ctx context.Context, column, value string) (*models.Group, error) {
	group := &models.Group{}
	var emoji sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, password_hash, emoji, created_at FROM groups WHERE "+column+" = ?",
		value,
	).Scan(&group.ID, &group.Name, &group.PasswordHash, &emoji, &group.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", value, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if emoji.Valid {
		group.Emoji = emoji.String
	}

	return group, nil
}

// ListGroupSummaries returns the groups the user belongs to, with member counts.
func (s *SQLiteStore) ListGroupSummaries(ctx context.Context, userID string) ([]*models.GroupSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, COALESCE(g.emoji, ''),
		       (SELECT COUNT(*) FROM group_members gm2 WHERE gm2.group_id = g.id)
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ?
		ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var summaries []*models.GroupSummary
	for rows.Next() {
		summary := &models.GroupSummary{}
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.Emoji, &summary.MemberCount); err != nil {
			return nil, fmt.Errorf("failed to scan group summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group summaries: %w", err)
	}

	return summaries, nil
}

// AddMember creates a membership row for the (user, group) pair.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO group_members (user_id, group_id) VALUES (?, ?)",
		userID, groupID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("membership (%s, %s): %w", userID, groupID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}

	return nil
}

// IsMember reports whether a membership row exists for the pair.
func (s *SQLiteStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM group_members WHERE user_id = ? AND group_id = ?",
		userID, groupID,
	).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return true, nil
}

// ListMembers returns the users belonging to a group, ordered by name.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, u.password_hash, u.created_at
		FROM users u
		JOIN group_members gm ON gm.user_id = u.id
		WHERE gm.group_id = ?
		ORDER BY u.name`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}
