package calculator

import (
	"math"
	"testing"

	"github.com/divvyup/divvy/internal/models"
)

func expense(payerID string, amount float64, splits ...models.Split) *models.Expense {
	return &models.Expense{PayerID: payerID, Amount: amount, Splits: splits}
}

func split(userID string, amount float64) models.Split {
	return models.Split{UserID: userID, Amount: amount}
}

func TestBalance(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		expenses []*models.Expense
		want     float64
	}{
		{
			name:     "no expenses yields zero",
			userID:   "alice",
			expenses: nil,
			want:     0,
		},
		{
			name:   "payer split evenly with one other",
			userID: "alice",
			expenses: []*models.Expense{
				expense("alice", 80, split("alice", 40), split("bob", 40)),
			},
			want: 40,
		},
		{
			name:   "participant who paid nothing",
			userID: "bob",
			expenses: []*models.Expense{
				expense("alice", 80, split("alice", 40), split("bob", 40)),
			},
			want: -40,
		},
		{
			name:   "payer nets out own split",
			userID: "alice",
			expenses: []*models.Expense{
				expense("alice", 90, split("alice", 30), split("bob", 30), split("carol", 30)),
			},
			want: 60,
		},
		{
			name:   "multiple expenses accumulate",
			userID: "alice",
			expenses: []*models.Expense{
				expense("alice", 80, split("alice", 40), split("bob", 40)),
				expense("bob", 30, split("alice", 15), split("bob", 15)),
			},
			want: 25,
		},
		{
			name:   "user absent from ledger",
			userID: "dave",
			expenses: []*models.Expense{
				expense("alice", 80, split("alice", 40), split("bob", 40)),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Balance(tt.userID, tt.expenses)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Balance(%q) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestGroupBalances(t *testing.T) {
	members := []string{"alice", "bob", "carol"}

	t.Run("no expenses yields zero for every member", func(t *testing.T) {
		balances := GroupBalances(members, nil)
		for _, id := range members {
			if balances[id] != 0 {
				t.Errorf("balance[%s] = %v, want 0", id, balances[id])
			}
		}
	})

	t.Run("balances sum to zero when splits cover each expense", func(t *testing.T) {
		expenses := []*models.Expense{
			expense("alice", 80, split("alice", 40), split("bob", 40)),
			expense("bob", 90, split("alice", 30), split("bob", 30), split("carol", 30)),
			expense("carol", 10, split("carol", 5), split("alice", 5)),
		}

		balances := GroupBalances(members, expenses)

		var sum float64
		for _, id := range members {
			sum += balances[id]
		}
		if math.Abs(sum) > 1e-9 {
			t.Errorf("balances sum = %v, want 0", sum)
		}
	})

	t.Run("matches single-user Balance", func(t *testing.T) {
		expenses := []*models.Expense{
			expense("alice", 80, split("alice", 40), split("bob", 40)),
			expense("bob", 30, split("alice", 15), split("bob", 15)),
		}

		balances := GroupBalances(members, expenses)
		for _, id := range members {
			if want := Balance(id, expenses); math.Abs(balances[id]-want) > 1e-9 {
				t.Errorf("balance[%s] = %v, want %v", id, balances[id], want)
			}
		}
	})

	t.Run("non-member payer tracked without being requested", func(t *testing.T) {
		expenses := []*models.Expense{
			expense("departed", 50, split("alice", 25), split("bob", 25)),
		}

		balances := GroupBalances(members, expenses)
		if balances["departed"] != 50 {
			t.Errorf("balance[departed] = %v, want 50", balances["departed"])
		}
		if balances["alice"] != -25 {
			t.Errorf("balance[alice] = %v, want -25", balances["alice"])
		}
	})
}
