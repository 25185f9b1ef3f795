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

// CreateInvite persists a new invite to the database.
func (s *SQLiteStore) CreateInvite(ctx context.Context, invite *models.Invite) error {
	if invite.ID == "" {
		invite.ID = uuid.New().String()
	}
	if invite.CreatedAt == 0 {
		invite.CreatedAt = time.Now().Unix()
	}

	var expiresAt interface{}
	if invite.ExpiresAt != 0 {
		expiresAt = invite.ExpiresAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_invites (id, token, group_id, created_by_id, expires_at, used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		invite.ID, invite.Token, invite.GroupID, invite.CreatedByID, expiresAt,
		boolToInt(invite.Used), invite.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("invite token: %w", storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}

	return nil
}

// GetInviteByToken retrieves an invite by its token.
func (s *SQLiteStore) GetInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	invite := &models.Invite{}
	var expiresAt sql.NullInt64
	var used int

	err := s.db.QueryRowContext(ctx,
		`SELECT id, token, group_id, created_by_id, expires_at, used, created_at
		 FROM group_invites WHERE token = ?`,
		token,
	).Scan(&invite.ID, &invite.Token, &invite.GroupID, &invite.CreatedByID,
		&expiresAt, &used, &invite.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invite: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	if expiresAt.Valid {
		invite.ExpiresAt = expiresAt.Int64
	}
	invite.Used = used != 0

	return invite, nil
}

// RedeemInvite marks the invite used and creates the membership in one
// transaction. The used flag is flipped with a conditional update so that
// concurrent redeemers of the same token serialize on the row: the first
// writer's update matches, every later one sees used=1 and affects zero
// rows. A zero row count, an unknown token and a passed expiry all surface
// as ErrInviteUnavailable.
func (s *SQLiteStore) RedeemInvite(ctx context.Context, token, userID string, now int64) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Check-and-set must be the transaction's first statement so the write
	// lock is taken before the invite row is observed.
	res, err := tx.ExecContext(ctx,
		`UPDATE group_invites
		 SET used = 1
		 WHERE token = ? AND used = 0 AND (expires_at IS NULL OR expires_at > ?)`,
		token, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to mark invite used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return "", storage.ErrInviteUnavailable
	}

	var groupID string
	err = tx.QueryRowContext(ctx,
		"SELECT group_id FROM group_invites WHERE token = ?",
		token,
	).Scan(&groupID)
	if err != nil {
		return "", fmt.Errorf("failed to load redeemed invite: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO group_members (user_id, group_id) VALUES (?, ?)",
		userID, groupID,
	); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("membership (%s, %s): %w", userID, groupID, storage.ErrConflict)
		}
		return "", fmt.Errorf("failed to insert membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return groupID, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
