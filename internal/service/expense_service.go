package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/divvyup/divvy/internal/models"
	"github.com/divvyup/divvy/internal/storage"
)

// SplitInput is one user's share in an expense payload. Split amounts are
// recorded as given: nothing requires them to be positive or to sum to the
// expense amount.
type SplitInput struct {
	UserID string  `json:"user_id"`
	Amount float64 `json:"amount"`
}

// ExpenseInput is the payload for creating an expense, and the full
// replacement payload for editing one.
type ExpenseInput struct {
	PayerID     string       `json:"payer_id"`
	Amount      float64      `json:"amount"`
	Description string       `json:"description,omitempty"`
	Splits      []SplitInput `json:"splits"`
}

// ExpenseService implements the ledger engine: expense+split units created,
// replaced and deleted atomically, always scoped to the caller's verified
// group.
type ExpenseService struct {
	store storage.Store
	gate  *AccessGate
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store, gate: NewAccessGate(store)}
}

// Create records a new expense with its splits as one unit. The caller must
// be a member of the group; the payer need not be — the payer is recorded
// at creation time, independent of later membership changes.
func (s *ExpenseService) Create(ctx context.Context, callerID, groupID string, in ExpenseInput) (*ExpenseView, error) {
	memberCtx, err := s.gate.Verify(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}

	users, err := s.validateInput(ctx, in)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     memberCtx.Group.ID,
		PayerID:     in.PayerID,
		CreatedByID: memberCtx.User.ID,
		Amount:      in.Amount,
		Description: in.Description,
		Splits:      buildSplits(in.Splits),
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", groupID,
		"payer_id", expense.PayerID,
		"amount", expense.Amount,
		"splits", len(expense.Splits),
	)

	view := expenseView(expense, users)
	return &view, nil
}

// Edit replaces an expense wholesale: amount, description, payer and the
// entire split set. The existing splits are discarded, not merged. An id
// that exists but belongs to another group is reported as not found.
func (s *ExpenseService) Edit(ctx context.Context, callerID, groupID, expenseID string, in ExpenseInput) (*ExpenseView, error) {
	memberCtx, err := s.gate.Verify(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}

	users, err := s.validateInput(ctx, in)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		ID:          expenseID,
		GroupID:     memberCtx.Group.ID,
		PayerID:     in.PayerID,
		Amount:      in.Amount,
		Description: in.Description,
		Splits:      buildSplits(in.Splits),
	}
	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	// Reload for the fields the replacement payload does not carry
	// (created_at, created_by).
	updated, err := s.store.GetExpense(ctx, groupID, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload expense: %w", err)
	}

	slog.Info("Expense updated", "expense_id", expenseID, "group_id", groupID, "splits", len(updated.Splits))

	view := expenseView(updated, users)
	return &view, nil
}

// Delete removes an expense and all of its splits. An id belonging to
// another group is reported as not found.
func (s *ExpenseService) Delete(ctx context.Context, callerID, groupID, expenseID string) error {
	if _, err := s.gate.Verify(ctx, callerID, groupID); err != nil {
		return err
	}

	if err := s.store.DeleteExpense(ctx, groupID, expenseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	slog.Info("Expense deleted", "expense_id", expenseID, "group_id", groupID)
	return nil
}

// validateInput checks the payload shape and resolves every referenced
// user, returning them keyed by id. Any failure here happens before a
// single row is written.
func (s *ExpenseService) validateInput(ctx context.Context, in ExpenseInput) (map[string]*models.User, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrLedgerValidation)
	}
	if in.PayerID == "" {
		return nil, fmt.Errorf("%w: payer required", ErrLedgerValidation)
	}
	if len(in.Splits) == 0 {
		return nil, fmt.Errorf("%w: at least one split required", ErrLedgerValidation)
	}

	ids := make([]string, 0, len(in.Splits)+1)
	ids = append(ids, in.PayerID)
	for _, split := range in.Splits {
		if split.UserID == "" {
			return nil, fmt.Errorf("%w: split user required", ErrLedgerValidation)
		}
		ids = append(ids, split.UserID)
	}

	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return nil, fmt.Errorf("%w: unknown user %s", ErrLedgerValidation, id)
		}
	}

	return users, nil
}

func buildSplits(inputs []SplitInput) []models.Split {
	splits := make([]models.Split, len(inputs))
	for i, in := range inputs {
		splits[i] = models.Split{UserID: in.UserID, Amount: in.Amount}
	}
	return splits
}
