package models

// Expense represents a monetary event paid by one user within a group.
// An expense owns its splits: they are created, replaced and deleted with
// it as one unit.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the user who paid. Recorded at creation time; the payer
	// is not required to be a current group member.
	PayerID string

	// CreatedByID is the member who recorded the expense. May differ from
	// the payer.
	CreatedByID string

	// Amount is the full expense amount. Always positive.
	Amount float64

	// Description is an optional human-readable note.
	Description string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// Splits are the per-user shares of this expense. Order is irrelevant.
	Splits []Split
}

// Split represents one user's assigned share of an expense.
//
// Nothing enforces that a group's split amounts sum to the expense amount;
// the ledger records shares as given and balances absorb the difference.
type Split struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	// ExpenseID is the expense this split belongs to.
	ExpenseID string

	// UserID is the user this share is assigned to.
	UserID string

	// Amount is this user's share of the expense.
	Amount float64
}
