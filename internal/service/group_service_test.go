package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/divvyup/divvy/internal/auth"
	"github.com/divvyup/divvy/internal/models"
	"github.com/divvyup/divvy/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func newTestUser(t *testing.T, store *sqlite.SQLiteStore, name string) *models.User {
	t.Helper()

	user := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "hashed",
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return user
}

// newTestGroup creates a group with the given plaintext password and makes
// owner its first member, mirroring GroupService.CreateGroup.
func newTestGroup(t *testing.T, store *sqlite.SQLiteStore, owner *models.User, name, password string) *models.Group {
	t.Helper()

	svc := NewGroupService(store)
	group, err := svc.CreateGroup(context.Background(), owner.ID, name, password, "🎿")
	if err != nil {
		t.Fatalf("CreateGroup(%s) failed: %v", name, err)
	}
	return group
}

func TestCreateGroup(t *testing.T) {
	store := newTestStore(t)
	svc := NewGroupService(store)
	ctx := context.Background()

	owner := newTestUser(t, store, "alice")

	group, err := svc.CreateGroup(ctx, owner.ID, "Ski Trip", "secret-pw", "🎿")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group.ID == "" {
		t.Error("expected group ID to be generated")
	}
	if group.PasswordHash == "secret-pw" {
		t.Error("group password stored in plaintext")
	}
	if !auth.VerifySecret("secret-pw", group.PasswordHash) {
		t.Error("group password hash does not verify")
	}

	ok, err := store.IsMember(ctx, group.ID, owner.ID)
	if err != nil {
		t.Fatalf("IsMember failed: %v", err)
	}
	if !ok {
		t.Error("creator should be a member of the new group")
	}
}

func TestJoinByPassword(t *testing.T) {
	store := newTestStore(t)
	svc := NewGroupService(store)
	ctx := context.Background()

	owner := newTestUser(t, store, "alice")
	joiner := newTestUser(t, store, "bob")
	group := newTestGroup(t, store, owner, "Ski Trip", "secret-pw")

	t.Run("correct credentials join and return the view", func(t *testing.T) {
		view, err := svc.JoinByPassword(ctx, joiner.ID, "Ski Trip", "secret-pw")
		if err != nil {
			t.Fatalf("JoinByPassword failed: %v", err)
		}
		if view.ID != group.ID {
			t.Errorf("view.ID = %s, want %s", view.ID, group.ID)
		}
		if len(view.Members) != 2 {
			t.Errorf("members = %d, want 2", len(view.Members))
		}
	})

	t.Run("wrong password rejected without membership", func(t *testing.T) {
		stranger := newTestUser(t, store, "carol")

		_, err := svc.JoinByPassword(ctx, stranger.ID, "Ski Trip", "wrong-pw")
		if !errors.Is(err, ErrJoinCredentialsInvalid) {
			t.Fatalf("expected ErrJoinCredentialsInvalid, got %v", err)
		}

		ok, err := store.IsMember(ctx, group.ID, stranger.ID)
		if err != nil {
			t.Fatalf("IsMember failed: %v", err)
		}
		if ok {
			t.Error("failed join must not create a membership row")
		}
	})

	t.Run("unknown group indistinguishable from wrong password", func(t *testing.T) {
		_, err := svc.JoinByPassword(ctx, joiner.ID, "No Such Group", "secret-pw")
		if !errors.Is(err, ErrJoinCredentialsInvalid) {
			t.Errorf("expected ErrJoinCredentialsInvalid, got %v", err)
		}
	})

	t.Run("rejoining an established pair fails", func(t *testing.T) {
		_, err := svc.JoinByPassword(ctx, joiner.ID, "Ski Trip", "secret-pw")
		if !errors.Is(err, ErrMembershipCreationFailed) {
			t.Errorf("expected ErrMembershipCreationFailed, got %v", err)
		}
	})
}

func TestInvites_Service(t *testing.T) {
	store := newTestStore(t)
	svc := NewGroupService(store)
	ctx := context.Background()

	owner := newTestUser(t, store, "alice")
	group := newTestGroup(t, store, owner, "Picnic", "pw")

	t.Run("member mints invite with default expiry", func(t *testing.T) {
		before := time.Now().Add(DefaultInviteTTL).Unix()
		invite, err := svc.CreateInvite(ctx, owner.ID, group.ID, 0)
		if err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}
		after := time.Now().Add(DefaultInviteTTL).Unix()

		if invite.Token == "" {
			t.Error("expected a token")
		}
		if invite.ExpiresAt < before || invite.ExpiresAt > after {
			t.Errorf("ExpiresAt = %d, want within [%d, %d]", invite.ExpiresAt, before, after)
		}
	})

	t.Run("non-member cannot mint", func(t *testing.T) {
		outsider := newTestUser(t, store, "dave")

		_, err := svc.CreateInvite(ctx, outsider.ID, group.ID, 0)
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("expected ErrAccessDenied, got %v", err)
		}
	})

	t.Run("redeem bare token", func(t *testing.T) {
		joiner := newTestUser(t, store, "erin")
		invite, err := svc.CreateInvite(ctx, owner.ID, group.ID, time.Hour)
		if err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}

		view, err := svc.JoinByInvite(ctx, joiner.ID, invite.Token)
		if err != nil {
			t.Fatalf("JoinByInvite failed: %v", err)
		}
		if view.ID != group.ID {
			t.Errorf("view.ID = %s, want %s", view.ID, group.ID)
		}
	})

	t.Run("redeem token embedded in invite URL", func(t *testing.T) {
		joiner := newTestUser(t, store, "frank")
		invite, err := svc.CreateInvite(ctx, owner.ID, group.ID, time.Hour)
		if err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}

		link := fmt.Sprintf("https://divvy.example.com/join?token=%s", invite.Token)
		if _, err := svc.JoinByInvite(ctx, joiner.ID, link); err != nil {
			t.Fatalf("JoinByInvite with URL failed: %v", err)
		}
	})

	t.Run("spent token rejected", func(t *testing.T) {
		joiner := newTestUser(t, store, "grace")
		latecomer := newTestUser(t, store, "henry")
		invite, err := svc.CreateInvite(ctx, owner.ID, group.ID, time.Hour)
		if err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}

		if _, err := svc.JoinByInvite(ctx, joiner.ID, invite.Token); err != nil {
			t.Fatalf("first JoinByInvite failed: %v", err)
		}

		_, err = svc.JoinByInvite(ctx, latecomer.ID, invite.Token)
		if !errors.Is(err, ErrInviteInvalid) {
			t.Errorf("expected ErrInviteInvalid, got %v", err)
		}
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		joiner := newTestUser(t, store, "iris")

		_, err := svc.JoinByInvite(ctx, joiner.ID, "not-a-real-token")
		if !errors.Is(err, ErrInviteInvalid) {
			t.Errorf("expected ErrInviteInvalid, got %v", err)
		}
	})
}

func TestGroupView(t *testing.T) {
	store := newTestStore(t)
	groupSvc := NewGroupService(store)
	expenseSvc := NewExpenseService(store)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	group := newTestGroup(t, store, alice, "Dinner Club", "pw")
	if _, err := groupSvc.JoinByPassword(ctx, bob.ID, "Dinner Club", "pw"); err != nil {
		t.Fatalf("JoinByPassword failed: %v", err)
	}

	t.Run("empty ledger yields zero balances", func(t *testing.T) {
		view, err := groupSvc.View(ctx, alice.ID, group.ID)
		if err != nil {
			t.Fatalf("View failed: %v", err)
		}
		if len(view.Members) != 2 {
			t.Fatalf("members = %d, want 2", len(view.Members))
		}
		for _, member := range view.Members {
			if member.Balance != 0 {
				t.Errorf("balance[%s] = %v, want 0", member.Name, member.Balance)
			}
		}
	})

	t.Run("80 paid by A split 40/40 yields +40/-40", func(t *testing.T) {
		_, err := expenseSvc.Create(ctx, alice.ID, group.ID, ExpenseInput{
			PayerID:     alice.ID,
			Amount:      80,
			Description: "groceries",
			Splits: []SplitInput{
				{UserID: alice.ID, Amount: 40},
				{UserID: bob.ID, Amount: 40},
			},
		})
		if err != nil {
			t.Fatalf("Create expense failed: %v", err)
		}

		view, err := groupSvc.View(ctx, bob.ID, group.ID)
		if err != nil {
			t.Fatalf("View failed: %v", err)
		}

		balances := make(map[string]float64)
		for _, member := range view.Members {
			balances[member.ID] = member.Balance
		}
		if math.Abs(balances[alice.ID]-40) > 1e-9 {
			t.Errorf("balance[alice] = %v, want 40", balances[alice.ID])
		}
		if math.Abs(balances[bob.ID]+40) > 1e-9 {
			t.Errorf("balance[bob] = %v, want -40", balances[bob.ID])
		}

		if len(view.Expenses) != 1 {
			t.Fatalf("expenses = %d, want 1", len(view.Expenses))
		}
		if view.Expenses[0].Payer.Name != "alice" {
			t.Errorf("payer name = %q, want alice", view.Expenses[0].Payer.Name)
		}
	})

	t.Run("non-member denied regardless of group existence", func(t *testing.T) {
		outsider := newTestUser(t, store, "mallory")

		if _, err := groupSvc.View(ctx, outsider.ID, group.ID); !errors.Is(err, ErrAccessDenied) {
			t.Errorf("existing group: expected ErrAccessDenied, got %v", err)
		}
		if _, err := groupSvc.View(ctx, outsider.ID, "no-such-group"); !errors.Is(err, ErrAccessDenied) {
			t.Errorf("missing group: expected ErrAccessDenied, got %v", err)
		}
	})
}
