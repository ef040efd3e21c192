package errors

import (
	"fmt"
)

// AuthError represents a failed credential check (bad API key or bad
// username/token pair)
type AuthError struct {
	Reason string
}

// Error returns the error message
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// BannedError represents an operation attempted by a banned username
type BannedError struct {
	Username string
}

// Error returns the error message
func (e *BannedError) Error() string {
	return fmt.Sprintf("account %s is banned", e.Username)
}

// VerificationRequiredError represents an account that has not completed
// Telegram verification; BindCode carries the still-pending code
type VerificationRequiredError struct {
	Username string
	BindCode string
}

// Error returns the error message
func (e *VerificationRequiredError) Error() string {
	return fmt.Sprintf("account %s requires Telegram verification", e.Username)
}

// InsufficientCreditsError represents a debit attempt on an empty balance
type InsufficientCreditsError struct {
	Username string
}

// Error returns the error message
func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits for %s", e.Username)
}

// ValidationError represents an error when validation fails
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// UpstreamError represents a lookup provider fault (timeout, transport
// failure, malformed response)
type UpstreamError struct {
	Provider string
	Err      error
}

// Error returns the error message
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider %s failed: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying cause
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NotFoundError represents a well-formed provider response with no record for
// the query; it is a normal outcome and is never billed
type NotFoundError struct {
	Provider string
	Query    string
}

// Error returns the error message
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("provider %s found no record for %q", e.Provider, e.Query)
}

// DeviceMismatchError represents a login from a device other than the one the
// account is bound to
type DeviceMismatchError struct {
	Username string
}

// Error returns the error message
func (e *DeviceMismatchError) Error() string {
	return fmt.Sprintf("account %s is registered from another device", e.Username)
}

// AlreadyBoundError represents a registration from a device whose fingerprint
// already belongs to a different account
type AlreadyBoundError struct {
	Fingerprint string
}

// Error returns the error message
func (e *AlreadyBoundError) Error() string {
	return fmt.Sprintf("fingerprint %s is already bound to an account", e.Fingerprint)
}

// BindCodeInvalidError represents a redemption attempt with a code that does
// not match any account (never issued, or already consumed)
type BindCodeInvalidError struct {
	Code string
}

// Error returns the error message
func (e *BindCodeInvalidError) Error() string {
	return fmt.Sprintf("bind code %s is invalid", e.Code)
}
