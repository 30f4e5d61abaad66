package service

import "errors"

// Domain failures. Every operation returns one of these instead of a
// generic error so handlers can map them to HTTP statuses without
// string matching.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCardNotFound       = errors.New("card not found")
	ErrOwnerNotFound      = errors.New("card owner not found")
	ErrSourceCardNotFound = errors.New("source card not found")
	ErrTargetCardNotFound = errors.New("target card not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrBadAmount          = errors.New("amount must be positive")
	ErrSameCard           = errors.New("source and target cards must differ")
	ErrBadRole            = errors.New("unknown role")
)
