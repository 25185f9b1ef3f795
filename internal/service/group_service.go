package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/divvyup/divvy/internal/auth"
	"github.com/divvyup/divvy/internal/calculator"
	"github.com/divvyup/divvy/internal/models"
	"github.com/divvyup/divvy/internal/storage"
)

// DefaultInviteTTL is how long an invite stays redeemable when the issuer
// does not pick an expiry.
const DefaultInviteTTL = 10 * time.Minute

// inviteTokenBytes is the entropy of a generated invite token.
const inviteTokenBytes = 16

// GroupService implements group lifecycle, membership joins and invites.
type GroupService struct {
	store storage.Store
	gate  *AccessGate
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store, gate: NewAccessGate(store)}
}

// CreateGroup creates a group with a bcrypt-hashed join password and makes
// the creator its first member.
func (s *GroupService) CreateGroup(ctx context.Context, userID, name, password, emoji string) (*models.Group, error) {
	if name == "" || password == "" {
		return nil, fmt.Errorf("%w: group name and password required", ErrLedgerValidation)
	}

	hash, err := auth.HashSecret(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash group password: %w", err)
	}

	group := &models.Group{
		Name:         name,
		PasswordHash: hash,
		Emoji:        emoji,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	if err := s.store.AddMember(ctx, group.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to add creator to group: %w", err)
	}

	slog.Info("Group created", "group_id", group.ID, "created_by", userID)
	return group, nil
}

// Groups returns the short listing of groups the user belongs to.
func (s *GroupService) Groups(ctx context.Context, userID string) ([]*models.GroupSummary, error) {
	summaries, err := s.store.ListGroupSummaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return summaries, nil
}

// JoinByPassword joins the caller to the group matching the supplied name
// and password. A missing group and a wrong password are reported
// identically as ErrJoinCredentialsInvalid, and no membership row is
// created on failure.
func (s *GroupService) JoinByPassword(ctx context.Context, userID, groupName, password string) (*GroupView, error) {
	group, err := s.store.GetGroupByName(ctx, groupName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrJoinCredentialsInvalid
		}
		return nil, fmt.Errorf("failed to look up group: %w", err)
	}

	if !auth.VerifySecret(password, group.PasswordHash) {
		slog.Warn("Password join rejected", "group_id", group.ID, "user_id", userID)
		return nil, ErrJoinCredentialsInvalid
	}

	if err := s.store.AddMember(ctx, group.ID, userID); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrMembershipCreationFailed
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	slog.Info("User joined group by password", "group_id", group.ID, "user_id", userID)
	return s.View(ctx, userID, group.ID)
}

// JoinByInvite redeems a single-use invite token and joins the caller to
// its group. The token may be supplied bare or embedded in an invite URL.
// Redemption is exactly-once: of any set of concurrent redeemers of the
// same token, one succeeds and the rest get ErrInviteInvalid.
func (s *GroupService) JoinByInvite(ctx context.Context, userID, tokenOrURL string) (*GroupView, error) {
	token := extractInviteToken(tokenOrURL)
	if token == "" {
		return nil, ErrInviteInvalid
	}

	groupID, err := s.store.RedeemInvite(ctx, token, userID, time.Now().Unix())
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInviteUnavailable), errors.Is(err, storage.ErrNotFound):
			slog.Warn("Invite redemption rejected", "user_id", userID)
			return nil, ErrInviteInvalid
		case errors.Is(err, storage.ErrConflict):
			return nil, ErrMembershipCreationFailed
		}
		return nil, fmt.Errorf("failed to redeem invite: %w", err)
	}

	slog.Info("User joined group by invite", "group_id", groupID, "user_id", userID)
	return s.View(ctx, userID, groupID)
}

// CreateInvite mints a single-use invite for the caller's group. ttl <= 0
// selects DefaultInviteTTL; the token carries 16 bytes of crypto-random
// entropy.
func (s *GroupService) CreateInvite(ctx context.Context, userID, groupID string, ttl time.Duration) (*models.Invite, error) {
	memberCtx, err := s.gate.Verify(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}

	token, err := newInviteToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}

	invite := &models.Invite{
		Token:       token,
		GroupID:     memberCtx.Group.ID,
		CreatedByID: memberCtx.User.ID,
		ExpiresAt:   time.Now().Add(ttl).Unix(),
	}
	if err := s.store.CreateInvite(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	slog.Info("Invite created", "group_id", groupID, "created_by", userID, "expires_at", invite.ExpiresAt)
	return invite, nil
}

// View assembles the full group view for a member: every member with a
// freshly derived balance plus the expense history with users resolved.
// Balances come from one pass over a single expenses+splits load, so the
// cost is two queries regardless of member count.
func (s *GroupService) View(ctx context.Context, userID, groupID string) (*GroupView, error) {
	memberCtx, err := s.gate.Verify(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	memberIDs := make([]string, len(members))
	users := make(map[string]*models.User, len(members))
	for i, member := range members {
		memberIDs[i] = member.ID
		users[member.ID] = member
	}

	// Payers and split users who are no longer (or never were) members
	// still need names in the expense views.
	var extraIDs []string
	for _, expense := range expenses {
		if _, ok := users[expense.PayerID]; !ok {
			extraIDs = append(extraIDs, expense.PayerID)
		}
		if _, ok := users[expense.CreatedByID]; !ok {
			extraIDs = append(extraIDs, expense.CreatedByID)
		}
		for _, split := range expense.Splits {
			if _, ok := users[split.UserID]; !ok {
				extraIDs = append(extraIDs, split.UserID)
			}
		}
	}
	if len(extraIDs) > 0 {
		extras, err := s.store.GetUsersByIDs(ctx, extraIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve expense users: %w", err)
		}
		for id, user := range extras {
			users[id] = user
		}
	}

	balances := calculator.GroupBalances(memberIDs, expenses)

	view := &GroupView{
		ID:       memberCtx.Group.ID,
		Name:     memberCtx.Group.Name,
		Emoji:    memberCtx.Group.Emoji,
		Members:  make([]MemberView, 0, len(members)),
		Expenses: make([]ExpenseView, 0, len(expenses)),
	}
	for _, member := range members {
		view.Members = append(view.Members, MemberView{
			ID:      member.ID,
			Name:    member.Name,
			Balance: balances[member.ID],
		})
	}
	for _, expense := range expenses {
		view.Expenses = append(view.Expenses, expenseView(expense, users))
	}

	return view, nil
}

// newInviteToken returns a URL-safe token with inviteTokenBytes of entropy.
func newInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// extractInviteToken accepts either a bare token or a full invite URL and
// returns the token, or "" when neither shape matches.
func extractInviteToken(tokenOrURL string) string {
	if strings.Contains(tokenOrURL, "://") {
		parsed, err := url.Parse(tokenOrURL)
		if err != nil {
			return ""
		}
		return parsed.Query().Get("token")
	}
	return strings.TrimSpace(tokenOrURL)
}
