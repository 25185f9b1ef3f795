package models

// Group represents a shared expense context.
// A group owns a set of memberships, expenses and outstanding invites.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// PasswordHash is the bcrypt hash of the group's join password.
	PasswordHash string

	// Emoji is the display icon for the group. Purely cosmetic.
	Emoji string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// GroupSummary is the short listing shape for a user's groups.
type GroupSummary struct {
	ID          string
	Name        string
	Emoji       string
	MemberCount int
}

// Membership is the association between a user and a group. The pair is
// unique; its existence is the sole authority on ledger access.
type Membership struct {
	UserID  string
	GroupID string
}
