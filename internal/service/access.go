package service

import (
	"context"
	"fmt"

	"github.com/divvyup/divvy/internal/models"
	"github.com/divvyup/divvy/internal/storage"
)

// MemberContext is a verified "member-of" context: proof that the user was
// a member of the group at the time of the check.
type MemberContext struct {
	Group *models.Group
	User  *models.User
}

// AccessGate resolves an authenticated user plus a group id into a
// MemberContext. It is the only entry point into member-scoped ledger and
// balance operations.
type AccessGate struct {
	store storage.Store
}

// NewAccessGate creates an AccessGate backed by the given store.
func NewAccessGate(store storage.Store) *AccessGate {
	return &AccessGate{store: store}
}

// Verify returns a MemberContext iff a membership row exists for the pair.
// The membership check runs before any group lookup, so a missing group and
// a missing membership are indistinguishable to the caller. Nothing is
// cached: membership can change between requests, so every ledger-affecting
// request re-runs this.
func (g *AccessGate) Verify(ctx context.Context, userID, groupID string) (*MemberContext, error) {
	ok, err := g.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !ok {
		return nil, ErrAccessDenied
	}

	group, err := g.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	user, err := g.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrAccessDenied
	}

	return &MemberContext{Group: group, User: user}, nil
}
