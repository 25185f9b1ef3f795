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

// CreateExpense persists an expense and all of its splits in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var description interface{}
	if expense.Description != "" {
		description = expense.Description
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, created_by_id, amount, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.PayerID, expense.CreatedByID,
		expense.Amount, description, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense with its splits. The group scope is part
// of the lookup: a valid expense id paired with the wrong group is not found.
func (s *SQLiteStore) GetExpense(ctx context.Context, groupID, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var description sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, payer_id, created_by_id, amount, description, created_at
		 FROM expenses WHERE id = ? AND group_id = ?`,
		expenseID, groupID,
	).Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.CreatedByID,
		&expense.Amount, &description, &expense.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if description.Valid {
		expense.Description = description.String
	}

	splits, err := s.loadSplits(ctx, expense.ID)
	if err != nil {
		return nil, err
	}
	expense.Splits = splits

	return expense, nil
}

// UpdateExpense replaces the expense's mutable fields and its entire split
// set in one transaction. The scope check rides on the UPDATE's WHERE
// clause: zero affected rows means no id/group match.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var description interface{}
	if expense.Description != "" {
		description = expense.Description
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET payer_id = ?, amount = ?, description = ?
		 WHERE id = ? AND group_id = ?`,
		expense.PayerID, expense.Amount, description, expense.ID, expense.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	// Full replace: discard the old split set wholesale.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM expense_splits WHERE expense_id = ?", expense.ID,
	); err != nil {
		return fmt.Errorf("failed to clear splits: %w", err)
	}

	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteExpense removes an expense scoped to a group. Splits go with it via
// the ON DELETE CASCADE foreign key.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, groupID, expenseID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE id = ? AND group_id = ?",
		expenseID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}

	return nil
}

// ListExpensesByGroup returns all expenses for a group with their splits,
// newest first. Splits for the whole group are loaded in a single query and
// joined in memory so a group view costs two queries, not one per expense.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, created_by_id, amount, description, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense := &models.Expense{}
		var description sql.NullString
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.CreatedByID,
			&expense.Amount, &description, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if description.Valid {
			expense.Description = description.String
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	splitRows, err := s.db.QueryContext(ctx,
		`SELECT sp.id, sp.expense_id, sp.user_id, sp.amount
		 FROM expense_splits sp
		 JOIN expenses e ON e.id = sp.expense_id
		 WHERE e.group_id = ?`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var split models.Split
		if err := splitRows.Scan(&split.ID, &split.ExpenseID, &split.UserID, &split.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if expense, ok := byID[split.ExpenseID]; ok {
			expense.Splits = append(expense.Splits, split)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return expenses, nil
}

// loadSplits fetches the splits belonging to one expense.
func (s *SQLiteStore) loadSplits(ctx context.Context, expenseID string) ([]models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, expense_id, user_id, amount FROM expense_splits WHERE expense_id = ?",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var split models.Split
		if err := rows.Scan(&split.ID, &split.ExpenseID, &split.UserID, &split.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return splits, nil
}

// insertSplits writes the expense's split rows within the given transaction.
func insertSplits(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i := range expense.Splits {
		split := &expense.Splits[i]
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		split.ExpenseID = expense.ID

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (id, expense_id, user_id, amount) VALUES (?, ?, ?, ?)",
			split.ID, split.ExpenseID, split.UserID, split.Amount,
		); err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}
