package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers missing or malformed form input. Operations
	// that hit it abort without touching the ledger.
	ErrValidation = errors.New("invalid input")

	ErrDuplicateUser      = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("wrong username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrExpenseNotFound    = errors.New("expense not found")

	// ErrAuthBackend wraps any fault raised by the remote identity
	// service: network errors, rejected credentials, missing profiles.
	ErrAuthBackend = errors.New("auth backend error")

	// ErrForbidden rejects deleting a remote account other than your own.
	ErrForbidden = errors.New("can only delete your own account")
)

var (
	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrValidation)
	ErrEmptyCategory    = fmt.Errorf("%w: empty category", ErrValidation)
)
