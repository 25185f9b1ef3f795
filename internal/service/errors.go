package service

import "errors"

// Failure kinds surfaced to callers. Handlers map these onto transport
// status codes; everything else is treated as an internal failure.
//
// The messages are deliberately generic. ErrJoinCredentialsInvalid does not
// say whether the group exists or the password was wrong, and
// ErrInviteInvalid does not say whether the token is unknown, expired or
// already used — distinguishing those would hand feedback to a guesser.
var (
	// ErrAccessDenied means the caller is not a member of the target group.
	ErrAccessDenied = errors.New("access denied")

	// ErrJoinCredentialsInvalid means the group name/password pair did not
	// match any group.
	ErrJoinCredentialsInvalid = errors.New("invalid group name or password")

	// ErrInviteInvalid means the invite token is unknown, expired or spent.
	ErrInviteInvalid = errors.New("invite link is invalid")

	// ErrMembershipCreationFailed means the membership pair was already
	// established when the join tried to create it.
	ErrMembershipCreationFailed = errors.New("could not add user to group")

	// ErrExpenseNotFound means the expense id does not exist within the
	// caller's group.
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrLedgerValidation means the expense payload is malformed: a
	// non-positive amount, an empty split list, or a split referencing an
	// unknown user.
	ErrLedgerValidation = errors.New("invalid expense payload")
)
