package services

import "errors"

var (
	// ErrNotFound covers diet/food lookups that miss or are scoped to
	// another user.
	ErrNotFound = errors.New("not found")

	// ErrNoEligibleFood means generation could not find a single allowed
	// food for a diet slot, even after querying the external API.
	ErrNoEligibleFood = errors.New("no eligible foods after filtering")

	// ErrInvalidPortionSize rejects zero or negative portions before any
	// mutation happens.
	ErrInvalidPortionSize = errors.New("portion size must be greater than zero")
)
