// Package models defines the core domain entities for Divvy.
//
// The entities mirror the ledger's relational shape:
//   - User: a registered account
//   - Group: a shared context owning members, expenses and invites
//   - Membership: the (user, group) pair that authorizes ledger access
//   - Invite: a single-use, optionally time-limited join token
//   - Expense: a monetary event paid by one user, owning its Splits
//   - Split: one user's share of an expense
//
// Balances are never stored; they are derived from expenses and splits on
// every read (see the calculator package). Relationships use ID strings
// rather than pointers to avoid circular references.
package models
