package service

import "github.com/divvyup/divvy/internal/models"

// UserRef is the minimal user shape embedded in views.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SplitView is one user's resolved share of an expense.
type SplitView struct {
	User   UserRef `json:"user"`
	Amount float64 `json:"amount"`
}

// ExpenseView is an expense with its payer and split users resolved.
type ExpenseView struct {
	ID          string      `json:"id"`
	Description string      `json:"description,omitempty"`
	Amount      float64     `json:"amount"`
	Payer       UserRef     `json:"payer"`
	CreatedBy   UserRef     `json:"created_by"`
	CreatedAt   int64       `json:"created_at"`
	Splits      []SplitView `json:"splits"`
}

// MemberView is one group member with their derived balance.
type MemberView struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// GroupView is the full group shape returned to members: every member with
// a freshly derived balance, plus the expense history.
type GroupView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Emoji    string        `json:"emoji,omitempty"`
	Members  []MemberView  `json:"members"`
	Expenses []ExpenseView `json:"expenses"`
}

// InviteView is the caller-facing shape of a freshly minted invite.
type InviteView struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

// userRef resolves an id against the loaded user set, falling back to the
// bare id when the user row is gone.
func userRef(id string, users map[string]*models.User) UserRef {
	if user, ok := users[id]; ok {
		return UserRef{ID: user.ID, Name: user.Name}
	}
	return UserRef{ID: id}
}

// expenseView assembles an ExpenseView from a stored expense and the users
// referenced by it.
func expenseView(expense *models.Expense, users map[string]*models.User) ExpenseView {
	view := ExpenseView{
		ID:          expense.ID,
		Description: expense.Description,
		Amount:      expense.Amount,
		Payer:       userRef(expense.PayerID, users),
		CreatedBy:   userRef(expense.CreatedByID, users),
		CreatedAt:   expense.CreatedAt,
		Splits:      make([]SplitView, 0, len(expense.Splits)),
	}
	for _, split := range expense.Splits {
		view.Splits = append(view.Splits, SplitView{
			User:   userRef(split.UserID, users),
			Amount: split.Amount,
		})
	}
	return view
}
