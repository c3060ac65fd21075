package relationship

import "errors"

// Typed outcomes for relationship actions. Handlers map these to HTTP
// statuses; anything else bubbling out of the store is a storage failure
// and is safe to retry, since no mutation partially commits.
var (
	// ErrSelfReference is returned when an action names the caller as its own target.
	ErrSelfReference = errors.New("relationship: cannot target yourself")

	// ErrInvalidTransition is returned when the requested action is not legal
	// from the pair's current state (duplicate request, accepting a request
	// that does not exist, removing a non-friend, and so on). The UI should
	// treat it as "the relationship already changed", not as a hard failure.
	ErrInvalidTransition = errors.New("relationship: action not valid for current state")

	// ErrForbidden is returned when the caller lacks the role the action
	// requires, e.g. the blocked party attempting to lift a block.
	ErrForbidden = errors.New("relationship: caller may not perform this action")
)
