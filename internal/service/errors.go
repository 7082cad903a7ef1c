package service

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrAlreadyPaid          = errors.New("job already paid for")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInvalidInput         = errors.New("invalid input")
	ErrForbidden            = errors.New("forbidden")
	ErrDepositLimitExceeded = errors.New("amount is greater than total allowable amount")
	ErrJobNotPaid           = errors.New("job has not been paid")
)
