// Package calculator derives balances from expense history.
//
// Balances are pure functions of the persisted expenses and splits; nothing
// here is cached or stored, so a balance is always consistent with the
// current ledger state.
package calculator

import "github.com/divvyup/divvy/internal/models"

// Balance returns the net position of one user within a set of expenses:
// the total they paid minus the total of the shares assigned to them.
// Positive means the user is owed money, negative means they owe.
// An empty expense set yields 0.
func Balance(userID string, expenses []*models.Expense) float64 {
	var paid, owed float64
	for _, expense := range expenses {
		if expense.PayerID == userID {
			paid += expense.Amount
		}
		for _, split := range expense.Splits {
			if split.UserID == userID {
				owed += split.Amount
			}
		}
	}
	return paid - owed
}

// GroupBalances computes every member's balance in a single pass over the
// group's expenses. Members with no ledger activity map to 0. Users who
// appear in the ledger without being listed as members (e.g. a payer who
// was never a member) are included too; callers filter as needed.
func GroupBalances(memberIDs []string, expenses []*models.Expense) map[string]float64 {
	balances := make(map[string]float64, len(memberIDs))
	for _, id := range memberIDs {
		balances[id] = 0
	}

	for _, expense := range expenses {
		balances[expense.PayerID] += expense.Amount
		for _, split := range expense.Splits {
			balances[split.UserID] -= split.Amount
		}
	}

	return balances
}
