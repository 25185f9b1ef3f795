// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/divvyup/divvy/internal/models"
)

// Sentinel errors returned by Store implementations. The service layer
// translates these into caller-facing failure kinds.
var (
	// ErrNotFound is returned when the requested row does not exist, or when
	// an id/group scope pair does not match an existing row.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint,
	// e.g. inserting an already-established membership pair.
	ErrConflict = errors.New("conflict")

	// ErrInviteUnavailable is returned by RedeemInvite when the token is
	// unknown, already used, or expired. The three causes are deliberately
	// indistinguishable.
	ErrInviteUnavailable = errors.New("invite unavailable")
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Multi-row writes (CreateExpense, UpdateExpense, RedeemInvite) are atomic:
// either every row becomes visible to subsequent readers or none do.
type Store interface {
	// Users

	// CreateUser persists a new user. The ID and CreatedAt fields are
	// populated by the store when unset.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when no
	// such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID retrieves a user by ID. Returns (nil, nil) when no such
	// user exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUsersByIDs retrieves multiple users keyed by ID. Missing users are
	// omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// Groups and memberships

	// CreateGroup persists a new group.
	CreateGroup(ctx context.Context, group *models.Group) error
	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	// GetGroupByName retrieves a group by its display name.
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)
	// ListGroupSummaries returns the groups the user belongs to, with
	// member counts.
	ListGroupSummaries(ctx context.Context, userID string) ([]*models.GroupSummary, error)
	// AddMember creates a membership row. Returns ErrConflict when the
	// pair already exists.
	AddMember(ctx context.Context, groupID, userID string) error
	// IsMember reports whether a membership row exists for the pair.
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	// ListMembers returns the users belonging to a group.
	ListMembers(ctx context.Context, groupID string) ([]*models.User, error)

	// Invites

	// CreateInvite persists a new invite.
	CreateInvite(ctx context.Context, invite *models.Invite) error
	// GetInviteByToken retrieves an invite by its token.
	GetInviteByToken(ctx context.Context, token string) (*models.Invite, error)
	// RedeemInvite atomically marks the invite used and creates the
	// membership for userID, returning the joined group's ID. Exactly one
	// of any set of concurrent redeemers of the same token succeeds; the
	// rest receive ErrInviteUnavailable. now is the Unix timestamp used for
	// the expiry check.
	RedeemInvite(ctx context.Context, token, userID string, now int64) (string, error)

	// Expenses

	// CreateExpense persists an expense and all of its splits as one unit.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	// GetExpense retrieves an expense with its splits, scoped to a group.
	// Returns ErrNotFound when the id/group pair does not match.
	GetExpense(ctx context.Context, groupID, expenseID string) (*models.Expense, error)
	// UpdateExpense replaces an expense's mutable fields and its entire
	// split set as one unit, scoped by the expense's GroupID field.
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	// DeleteExpense removes an expense and cascades to its splits, scoped
	// to a group.
	DeleteExpense(ctx context.Context, groupID, expenseID string) error
	// ListExpensesByGroup returns all expenses for a group with their
	// splits, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}
