package models

// Invite represents a single-use token that grants group membership
// without the group password.
type Invite struct {
	// ID is the unique identifier for the invite (UUID format).
	ID string

	// Token is the unguessable join token (crypto-random, URL-safe).
	Token string

	// GroupID is the group the invite grants access to.
	GroupID string

	// CreatedByID is the member who issued the invite.
	CreatedByID string

	// ExpiresAt is the Unix timestamp after which the invite is dead.
	// Zero means the invite never expires.
	ExpiresAt int64

	// Used reports whether the invite has been redeemed. Monotonic: once
	// true it never reverts.
	Used bool

	// CreatedAt is the Unix timestamp when the invite was issued.
	CreatedAt int64
}
