package contests

import "errors"

var (
	ErrNotFound       = errors.New("contest not found")
	ErrClosed         = errors.New("contest is closed")
	ErrEndTimeTooSoon = errors.New("endTime must be at least one hour after creation")
	ErrEndTimeTooLate = errors.New("endTime must be at most two years after creation")
	ErrInvalidVote    = errors.New("vote must be up or down")
	ErrNotOwner       = errors.New("user does not own this contest")
	ErrWrongRole      = errors.New("user role does not permit this operation")
)
