package storage

import "errors"

// Common storage errors
var (
	// ErrAccountNotFound indicates that no account exists for the username
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists indicates that the username is already taken
	ErrAccountExists = errors.New("account already exists")

	// ErrFingerprintTaken indicates that another account already holds the fingerprint
	ErrFingerprintTaken = errors.New("fingerprint already bound to an account")

	// ErrBindingPresent indicates a one-time rebind attempt on an account that
	// still has a fingerprint
	ErrBindingPresent = errors.New("account already has a device binding")

	// ErrInsufficientCredits indicates a conditional debit that found an empty balance
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrBindCodeNotFound indicates that no account holds the bind code
	ErrBindCodeNotFound = errors.New("bind code not found")

	// ErrNotBanned indicates an unban of a username that has no ban record
	ErrNotBanned = errors.New("username is not banned")
)
