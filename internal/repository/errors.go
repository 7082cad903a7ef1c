package repository

import "errors"

var (
	// ErrAccessDenied is returned when a principal's type grants no contract
	// visibility. Unknown types are denied, never given an unfiltered view.
	ErrAccessDenied = errors.New("access denied")

	ErrJobAlreadyPaid      = errors.New("job already paid")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDepositOverLimit    = errors.New("deposit over limit")
)
